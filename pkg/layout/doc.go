// Package layout defines the contracts around graph layout computation: the
// layout input snapshot with its identity-preserving merge, the node size
// scale, and the pluggable layout function signature.
//
// # Layout input tracking
//
// A layout input is the minimal snapshot of data that determines graph
// geometry: viewport dimensions, margins, topology identity and options, and
// a projection of the nodes to id+adjacency. [Merge] folds an incoming
// snapshot into the previous one while preserving sub-structure identity
// wherever values are deep-equal. When nothing changed at all, Merge returns
// the previous pointer itself, so callers decide "does layout need to re-run"
// with a single pointer comparison:
//
//	merged := layout.Merge(prev, incoming)
//	if merged != prev {
//	    // something meaningful changed, recompute
//	}
//
// # Layout functions
//
// The layout algorithm itself is external to the engine and modeled as a pure
// function [Func]. Package layout/force provides the default implementation.
package layout
