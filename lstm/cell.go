package lstm

import "github.com/ruffrey/lstm-char-go/recurrent"

// State is the hidden and cell state carried from one timestep to the next.
type State struct {
	H, C *recurrent.Node
}

/*
Step is one LSTM cell update. It wires x and the incoming state through the
forget, input, candidate and output gates:

	z  = [h, x]
	f  = σ(z·Wf + bf)
	i  = σ(z·Wi + bi)
	g  = tanh(z·Wc + bc) ⊙ i
	o  = σ(z·Wo + bo)
	c' = c ⊙ f + g
	h' = tanh(c') ⊙ o

Shapes are not checked here. A mismatch is recorded on g by the operator
that hits it.
*/
func Step(g *recurrent.Graph, p *Params, x *recurrent.Node, s State) State {
	z := g.Concat(s.H, x)
	forget := g.Sigmoid(g.Add(g.Dot(z, p.Wf), p.Bf))
	input := g.Sigmoid(g.Add(g.Dot(z, p.Wi), p.Bi))
	write := g.Eltmul(g.Tanh(g.Add(g.Dot(z, p.Wc), p.Bc)), input)
	output := g.Sigmoid(g.Add(g.Dot(z, p.Wo), p.Bo))

	c := g.Add(g.Eltmul(s.C, forget), write)
	h := g.Eltmul(g.Tanh(c), output)
	return State{H: h, C: c}
}
