package lstm

import (
	"github.com/pkg/errors"

	"github.com/ruffrey/lstm-char-go/mat64"
	"github.com/ruffrey/lstm-char-go/recurrent"
)

/*
Batch is a [batch_size, sequence_length] matrix of token ids, one sequence
per row. Builders only read it.
*/
type Batch [][]int

func (b Batch) dims() (int, int, error) {
	if len(b) == 0 {
		return 0, 0, errors.Wrap(ErrInvalidSequenceLength, "empty batch")
	}
	steps := len(b[0])
	for i, row := range b {
		if len(row) != steps {
			return 0, 0, errors.Wrapf(ErrInvalidSequenceLength, "row %d has %d tokens, row 0 has %d", i, len(row), steps)
		}
	}
	if steps < 2 {
		return 0, 0, errors.Wrapf(ErrInvalidSequenceLength, "%d tokens per sequence, need at least 2", steps)
	}
	return len(b), steps, nil
}

// column returns the ids at position t of every sequence, shaped [batch_size].
func (b Batch) column(t int) *mat64.Mat {
	m := mat64.NewMat(len(b))
	for i, row := range b {
		m.W[i] = float64(row[t])
	}
	return m
}

// targets returns every id but the first of each sequence, shaped [batch_size, sequence_length-1].
func (b Batch) targets() *mat64.Mat {
	steps := len(b[0]) - 1
	m := mat64.NewMat(len(b), steps)
	for i, row := range b {
		for t, tok := range row[1:] {
			m.W[i*steps+t] = float64(tok)
		}
	}
	return m
}

/*
TrainGraph builds teacher-forced training graphs: at every position the
model sees the true token and is scored on predicting the next one.
*/
type TrainGraph struct {
	*recurrent.Graph
	Params *Params
}

/*
NewTrainGraph returns a training graph over p, scored with log-loss and updated by solver.
*/
func NewTrainGraph(p *Params, solver recurrent.Solver) *TrainGraph {
	var model *recurrent.Model
	if p != nil {
		model = p.Model
	}
	return &TrainGraph{
		Graph:  recurrent.NewGraph(model, recurrent.LogLoss{}, solver),
		Params: p,
	}
}

/*
Build unrolls the LSTM over batch, replacing whatever the graph held before.
A batch with T columns gives T-1 steps. The registered output stacks each
step's next-token distribution into [batch_size, T-1, NumChar], and the
expectation is columns 1 through T-1 of batch.

Nothing is left registered when Build fails.
*/
func (t *TrainGraph) Build(batch Batch) error {
	g := t.Graph
	g.Reset()
	p := t.Params
	if err := p.check(); err != nil {
		return err
	}
	size, steps, err := batch.dims()
	if err != nil {
		return err
	}
	for _, row := range batch {
		if err := p.checkTokens(row); err != nil {
			return err
		}
	}

	s := p.zeroState(g, size)
	outputs := make([]*recurrent.Node, 0, steps-1)
	for i := 0; i < steps-1; i++ {
		x := g.Input()
		x.Set(batch.column(i))
		s = Step(g, p, g.Embed(x, p.C2V), s)
		outputs = append(outputs, g.Softmax(g.Dot(s.H, p.V)))
	}
	g.Output(g.Collect(outputs...))
	g.Expect(batch.targets())

	if err := g.Err(); err != nil {
		g.Reset()
		return err
	}
	return nil
}

/*
Train builds the graph for batch and runs one forward, backward and solver step.
*/
func (t *TrainGraph) Train(batch Batch) (recurrent.Stats, error) {
	if err := t.Build(batch); err != nil {
		return recurrent.Stats{}, err
	}
	return t.Graph.Train()
}

/*
Test builds the graph for batch and reports its loss without updating parameters.
*/
func (t *TrainGraph) Test(batch Batch) (recurrent.Stats, error) {
	if err := t.Build(batch); err != nil {
		return recurrent.Stats{}, err
	}
	return t.Graph.Test()
}

// WeightDecay decays the learning rate when the solver supports it.
func (t *TrainGraph) WeightDecay() {
	if sgd, ok := t.Solver.(*recurrent.SGD); ok {
		sgd.WeightDecay()
	}
}
