package lstm

import (
	"github.com/pkg/errors"

	"github.com/ruffrey/lstm-char-go/mat64"
	"github.com/ruffrey/lstm-char-go/recurrent"
)

/*
PredictGraph builds greedy generation graphs for a single sequence. It has
no loss and is only ever run forward.
*/
type PredictGraph struct {
	*recurrent.Graph
	Params *Params

	// Predicts holds one token node per step of the last Build.
	Predicts []*recurrent.Node

	evaluated bool
}

/*
NewPredictGraph returns a prediction graph sharing p with any training graph built on it.
*/
func NewPredictGraph(p *Params) *PredictGraph {
	var model *recurrent.Model
	if p != nil {
		model = p.Model
	}
	return &PredictGraph{
		Graph:  recurrent.NewGraph(model, nil, nil),
		Params: p,
	}
}

/*
Build unrolls n steps. Step t reads prefix[t] while the prefix lasts;
after that it reads the arg-max of softmax(h·V) over the hidden state
entering the step, which is the model's own prediction from step t-1.
Each step's token node is returned, and kept in Predicts, in order.

n is independent of len(prefix): a longer prefix is cut short and a shorter
one is continued by the model. n == 0 builds nothing.

A failed Build leaves no nodes and no predictions behind.
*/
func (pg *PredictGraph) Build(prefix []int, n int) ([]*recurrent.Node, error) {
	g := pg.Graph
	g.Reset()
	pg.Predicts = nil
	pg.evaluated = false

	p := pg.Params
	if err := p.check(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.Wrapf(ErrInvalidSequenceLength, "output length %d", n)
	}
	if err := p.checkTokens(prefix); err != nil {
		return nil, err
	}

	predicts := make([]*recurrent.Node, 0, n)
	if n == 0 {
		pg.Predicts = predicts
		return predicts, nil
	}

	s := p.zeroState(g, 1)
	for t := 0; t < n; t++ {
		var x *recurrent.Node
		if t < len(prefix) {
			x = g.Input()
			x.Set(mat64.FromValues([]float64{float64(prefix[t])}, 1))
		} else {
			x = g.ArgMax(g.Softmax(g.Dot(s.H, p.V)))
		}
		predicts = append(predicts, x)
		s = Step(g, p, g.Embed(x, p.C2V), s)
	}

	if err := g.Err(); err != nil {
		g.Reset()
		return nil, err
	}
	pg.Predicts = predicts
	return predicts, nil
}

// Forward evaluates the graph so that Tokens can read the predictions.
func (pg *PredictGraph) Forward() error {
	err := pg.Graph.Forward()
	pg.evaluated = err == nil
	return err
}

/*
Tokens decodes Predicts into token ids. It needs a Forward after the last Build.
*/
func (pg *PredictGraph) Tokens() ([]int, error) {
	if !pg.evaluated && len(pg.Predicts) > 0 {
		return nil, ErrNotEvaluated
	}
	tokens := make([]int, len(pg.Predicts))
	for i, n := range pg.Predicts {
		tokens[i] = int(n.Value.W[0])
	}
	return tokens, nil
}

/*
Predict builds and evaluates n steps from prefix and returns the chosen tokens.
*/
func (pg *PredictGraph) Predict(prefix []int, n int) ([]int, error) {
	if _, err := pg.Build(prefix, n); err != nil {
		return nil, err
	}
	if err := pg.Forward(); err != nil {
		return nil, err
	}
	return pg.Tokens()
}
