package domain

import "time"

// Note is a short structured observation written by the control loops to the
// knowledge journal: conversation summaries, combat reports, blocked paths,
// points of interest.
type Note struct {
	Category  string    `json:"category" yaml:"category"`
	Text      string    `json:"text" yaml:"text"`
	Map       string    `json:"map,omitempty" yaml:"map,omitempty"`
	Tile      Tile      `json:"tile,omitempty" yaml:"tile,omitempty"`
	Tick      uint64    `json:"tick,omitempty" yaml:"tick,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
