package recurrent

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/ruffrey/lstm-char-go/mat64"
)

// classifier maps two token ids to distributions over two classes.
func classifier(g *Graph) {
	table := g.Model.Lookup("table")
	w := g.Model.Lookup("w")
	g.Output(g.Softmax(g.Dot(g.Embed(ids(g, 0, 1), table), w)))
	g.Expect(mat64.FromValues([]float64{1, 0}, 2))
}

func newClassifierModel() *Model {
	m := NewModel(5)
	m.Param("table", nil, 2, 3)
	m.Param("w", nil, 3, 2)
	return m
}

func TestGraph(t *testing.T) {
	t.Run("Train lowers the loss", func(t *testing.T) {
		g := NewGraph(newClassifierModel(), LogLoss{}, NewSGD(0.5, 1, 10))
		classifier(g)
		first, err := g.Train()
		if err != nil {
			t.Fatal(err)
		}
		last := first
		for i := 0; i < 50; i++ {
			if last, err = g.Train(); err != nil {
				t.Fatal(err)
			}
		}
		if last.Loss >= first.Loss {
			t.Errorf("loss went from %v to %v", first.Loss, last.Loss)
		}
		if last.Correct != 2 || last.Accuracy() != 1 {
			t.Errorf("accuracy %d/%d", last.Correct, last.Total)
		}
		if _, ok := last.Solver["ratio_clipped"]; !ok {
			t.Errorf("solver stats missing: %v", last.Solver)
		}
	})
	t.Run("Test leaves parameters alone", func(t *testing.T) {
		m := newClassifierModel()
		before := m.Lookup("w").Value.Clone()
		g := NewGraph(m, LogLoss{}, NewSGD(0.5, 1, 10))
		classifier(g)
		if _, err := g.Test(); err != nil {
			t.Fatal(err)
		}
		for i, v := range m.Lookup("w").Value.W {
			if v != before.W[i] {
				t.Fatal("Test() changed a parameter")
			}
		}
	})
	t.Run("Reset keeps parameters and drops the arena", func(t *testing.T) {
		m := newClassifierModel()
		g := NewGraph(m, LogLoss{}, nil)
		classifier(g)
		if g.NodeCount() == 0 {
			t.Fatal("nothing built")
		}
		g.Reset()
		if g.NodeCount() != 0 || g.OutputNode() != nil || g.Expected() != nil {
			t.Error("arena survived Reset")
		}
		if len(m.Params()) != 2 {
			t.Error("parameters lost")
		}
	})
	t.Run("Train needs a loss", func(t *testing.T) {
		g := NewGraph(newClassifierModel(), nil, nil)
		classifier(g)
		if _, err := g.Train(); !errors.Is(err, ErrNoLoss) {
			t.Errorf("Train() = %v", err)
		}
	})
	t.Run("Train needs an output", func(t *testing.T) {
		g := NewGraph(newClassifierModel(), LogLoss{}, nil)
		if _, err := g.Train(); !errors.Is(err, ErrNoOutput) {
			t.Errorf("Train() = %v", err)
		}
		if err := g.Backward(); !errors.Is(err, ErrNoOutput) {
			t.Errorf("Backward() = %v", err)
		}
	})
	t.Run("Set only binds inputs", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fail()
			}
		}()
		newClassifierModel().Lookup("w").Set(mat64.NewMat(3, 2))
	})
}
