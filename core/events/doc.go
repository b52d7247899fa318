// Package events defines the pipeline events emitted on the event bus.
//
// Available event types:
//   - StepEvent: a carryover step started, finished, failed or was skipped
//   - TableEvent: an existing capacity table was rewritten
package events
