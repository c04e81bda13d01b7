/*
Package recurrent is a small define-then-run autograd engine for recurrent networks.

A Model owns the trainable parameters. A Graph is an arena of nodes built
against a Model: callers allocate inputs, chain operator methods such as
Dot, Add and Sigmoid, register an output and an expectation, and then run
Forward, Backward and a Solver step. Reset drops the arena while the
Model's parameters stay put, so every build reuses the same parameter
instances and gradients accumulate across an unrolled sequence.

Operator methods never return errors. The first failure is recorded on the
Graph and reported by Err, Forward or Train; later operator calls on a
failed graph return inert nodes.
*/
package recurrent

import "github.com/pkg/errors"

var (
	// ErrShapeMismatch is returned when operand dimensions are incompatible.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrUnboundInput is returned when an input node is used before Set.
	ErrUnboundInput = errors.New("input node has no value")
	// ErrStaleNode is returned when a node from another graph, or from an
	// earlier build of this graph, is used as an operand.
	ErrStaleNode = errors.New("node does not belong to the current graph build")
	// ErrIndexOutOfRange is returned when a token id does not address a row.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNoOutput is returned when a pass needs an output or expectation that was never registered.
	ErrNoOutput = errors.New("graph has no output")
	// ErrNoLoss is returned when training a graph without a loss function.
	ErrNoLoss = errors.New("graph has no loss function")
)
