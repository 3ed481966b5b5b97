// Package graph implements the small state-machine engine the news agent
// pipelines run on: named nodes, static and conditional edges, and a compiled
// Runnable that executes one state sequentially from the entry point to END.
package graph

import (
	"context"
	"errors"
)

// END is the name of the implicit terminal node.
const END = "END"

var (
	// ErrEntryPointNotSet is returned by Compile when no entry point was set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when execution reaches an unknown node name.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when a non-terminal node has no edge.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrMaxStepsExceeded is returned when execution does not terminate
	// within the configured step budget.
	ErrMaxStepsExceeded = errors.New("max steps exceeded")
)

// Node is a unit of work in the graph. The function receives the current
// state and returns the next state.
type Node[S any] struct {
	Name        string
	Description string
	Function    func(ctx context.Context, state S) (S, error)
}

// Edge is a static transition between two nodes.
type Edge struct {
	From string
	To   string
}

// Condition picks the next node name from the current state.
type Condition[S any] func(ctx context.Context, state S) string
