package events

import "time"

// TableEvent is published after an existing capacity table was rewritten.
type TableEvent struct {
	RunID      string
	Category   string
	Technology string
	Kind       string
	Path       string
	Added      int
	Rows       int
	Time       time.Time
}
