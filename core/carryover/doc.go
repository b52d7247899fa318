// Package carryover runs a base optimization, carries its capacity additions
// into an operation-only copy of the dataset and runs the engine again with
// capacities fixed.
//
// The steps run strictly in order:
//
//	duplicate -> base_run -> load_results -> reindex -> merge -> operation_run -> cleanup
//
// The operation-only dataset is a scoped resource: when deletion is requested
// it is removed on every exit path once it was created.
package carryover
