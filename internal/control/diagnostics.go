package control

import "strings"

// Reason is the classified cause of a command rejection, recovered from the
// snapshot diagnostic. The publisher's structured reason codes map onto it
// directly; legacy free-text diagnostics are matched by substring.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonNoAmmo        Reason = "no_ammo"
	ReasonOutOfRange    Reason = "out_of_range"
	ReasonNotEnoughAP   Reason = "not_enough_ap"
	ReasonTargetDead    Reason = "target_dead"
	ReasonNoPath        Reason = "no_path"
	ReasonAnimationBusy Reason = "animation_busy"
	ReasonRejected      Reason = "rejected"
)

var structuredReasons = map[string]Reason{
	"no_ammo":        ReasonNoAmmo,
	"out_of_range":   ReasonOutOfRange,
	"not_enough_ap":  ReasonNotEnoughAP,
	"target_dead":    ReasonTargetDead,
	"no_path":        ReasonNoPath,
	"animation_busy": ReasonAnimationBusy,
	"rejected":       ReasonRejected,
}

// ClassifyDiagnostic maps a snapshot diagnostic to a Reason. Diagnostics
// that report success ("end_turn: ap=0", "flee_combat: attempted") classify
// as ReasonNone.
func ClassifyDiagnostic(diag string) Reason {
	if diag == "" {
		return ReasonNone
	}
	if reason, ok := structuredReasons[diag]; ok {
		return reason
	}

	lower := strings.ToLower(diag)
	switch {
	case strings.Contains(lower, "no ammo"):
		return ReasonNoAmmo
	case strings.Contains(lower, "out of range"):
		return ReasonOutOfRange
	case strings.Contains(lower, "not enough ap"), strings.Contains(lower, "no ap remaining"):
		return ReasonNotEnoughAP
	case strings.Contains(lower, "already dead"):
		return ReasonTargetDead
	case strings.Contains(lower, "no path"):
		return ReasonNoPath
	case strings.Contains(lower, "animation busy"):
		return ReasonAnimationBusy
	case strings.Contains(lower, "rejected"):
		return ReasonRejected
	}
	return ReasonNone
}

// IsRejection reports whether the diagnostic indicates the command was
// refused rather than applied.
func IsRejection(diag string) bool {
	return ClassifyDiagnostic(diag) != ReasonNone
}
