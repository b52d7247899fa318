// Package jobindex resolves which base scenario and which operational
// scenario a worker runs. Indices come either from explicit comma separated
// lists or from a single flat batch-array index that is split over the
// (base x operational) scenario grid with div/mod.
package jobindex
