// Package capacity models the capacity tables exchanged with the optimization
// engine: the wide capacity_addition result reported per technology, kind and
// node, and the per-technology capacity_existing input tables that the
// operation-only run consumes.
package capacity
