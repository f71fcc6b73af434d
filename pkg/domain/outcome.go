package domain

// Outcome is the coded result shared by every control loop. Loops return an
// Outcome plus the last diagnostic string; they never panic or abort except on
// transport faults.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeBlocked      Outcome = "blocked"
	OutcomeStuck        Outcome = "stuck"
	OutcomeTimeout      Outcome = "timeout"
	OutcomeTransitioned Outcome = "transitioned"
	OutcomeInterrupted  Outcome = "interrupted"
	OutcomeDead         Outcome = "dead"
	OutcomeFled         Outcome = "fled"
)

// Success reports whether the outcome terminates its loop without a failure:
// arrival, a map transition, or a successful escape.
func (o Outcome) Success() bool {
	return o == OutcomeOK || o == OutcomeTransitioned || o == OutcomeFled
}
