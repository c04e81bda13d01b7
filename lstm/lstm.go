// Package lstm builds character-level LSTM language-model graphs on top of
// package recurrent: a batched, teacher-forced graph for training and a
// single-sequence, greedy graph for generating text.
package lstm

import "github.com/pkg/errors"

var (
	// ErrInvalidSequenceLength is returned for a batch with fewer than two
	// columns, an empty or ragged batch, or a negative output length.
	ErrInvalidSequenceLength = errors.New("invalid sequence length")
	// ErrUnboundParameter is returned when a graph is built before its
	// parameters were allocated.
	ErrUnboundParameter = errors.New("model parameters are not allocated")
	// ErrTokenOutOfRange is returned for a token id outside the vocabulary.
	ErrTokenOutOfRange = errors.New("token outside vocabulary")
	// ErrNotEvaluated is returned when predictions are read before a forward pass.
	ErrNotEvaluated = errors.New("prediction graph has not been evaluated")
)
