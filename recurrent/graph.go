package recurrent

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ruffrey/lstm-char-go/mat64"
)

const (
	opParam = "param"
	opInput = "input"
)

type forwardFunc func() error

type backprop func()

/*
Node is a value in a Graph: a parameter, a bound input or the result of an operator.
After Forward, Value.W holds its value; after Backward, Value.DW holds the
gradient of the loss with respect to it.
*/
type Node struct {
	Value *mat64.Mat

	op     string
	name   string
	inputs []*Node

	graph *Graph
	gen   int

	forward  forwardFunc
	backward backprop
}

// Op names the operator that produced n, or "param" / "input".
func (n *Node) Op() string { return n.op }

// Name is the parameter name. Empty for other nodes.
func (n *Node) Name() string { return n.name }

// Inputs are the operands n was built from.
func (n *Node) Inputs() []*Node { return n.inputs }

/*
Set binds the value of an input node. The shape of m becomes the shape seen
by every operator built on top of n, so Set it before using n as an operand.
*/
func (n *Node) Set(m *mat64.Mat) {
	if n.op != opInput {
		panic("recurrent: Set called on a " + n.op + " node")
	}
	n.Value = m
}

/*
Graph is the neural network graph: an arena of nodes plus the loss and
solver that train the Model it is built against.

A Graph is not safe for concurrent use, and two graphs sharing a Model must
not run overlapping forward/backward/update cycles.
*/
type Graph struct {
	Model  *Model
	Loss   Loss
	Solver Solver

	nodes  []*Node
	output *Node
	expect *mat64.Mat

	gen int
	err error
}

/*
NewGraph instantiates a Graph over model. Either of loss and solver may be nil
for a graph that is only ever evaluated.
*/
func NewGraph(model *Model, loss Loss, solver Solver) *Graph {
	return &Graph{
		Model:  model,
		Loss:   loss,
		Solver: solver,
	}
}

/*
Reset drops every node built since the last Reset, along with the output,
expectation and any recorded error. Parameters are untouched.
*/
func (g *Graph) Reset() {
	g.nodes = nil
	g.output = nil
	g.expect = nil
	g.err = nil
	g.gen++
}

// Err returns the first error recorded while building the current arena.
func (g *Graph) Err() error { return g.err }

// Nodes lists the arena in creation order, which is a topological order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// NodeCount is the number of arena nodes, inputs included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

/*
Input allocates an input node. Bind its value with Set.
*/
func (g *Graph) Input() *Node {
	return g.add(&Node{op: opInput})
}

// Output registers the node whose value the loss is computed on.
func (g *Graph) Output(n *Node) {
	if g.err != nil {
		return
	}
	g.output = n
}

// OutputNode returns the registered output, or nil.
func (g *Graph) OutputNode() *Node { return g.output }

// Expect registers the ground truth the loss compares the output against.
func (g *Graph) Expect(m *mat64.Mat) {
	if g.err != nil {
		return
	}
	g.expect = m
}

// Expected returns the registered expectation, or nil.
func (g *Graph) Expected() *mat64.Mat { return g.expect }

/*
Forward evaluates every arena node in creation order and clears all
gradients, parameters included. It can be called repeatedly; each call
recomputes values from the current parameters and inputs.
*/
func (g *Graph) Forward() error {
	if g.err != nil {
		return g.err
	}
	if g.Model != nil {
		for _, p := range g.Model.params {
			p.Value.ZeroGrad()
		}
	}
	for _, n := range g.nodes {
		if n.Value == nil {
			return errors.Wrap(ErrUnboundInput, "forward")
		}
		n.Value.ZeroGrad()
		if n.forward == nil {
			continue
		}
		if err := n.forward(); err != nil {
			return errors.Wrapf(err, "forward %s", n.op)
		}
	}
	return nil
}

/*
Backward runs all backpropagation functions in reverse creation order. The
output gradient must already be in place, which Train arranges through the Loss.
*/
func (g *Graph) Backward() error {
	if g.err != nil {
		return g.err
	}
	if g.output == nil {
		return ErrNoOutput
	}
	for i := len(g.nodes) - 1; i >= 0; i-- {
		if fn := g.nodes[i].backward; fn != nil {
			fn()
		}
	}
	return nil
}

/*
Train runs one forward/loss/backward/update cycle over the current arena.
*/
func (g *Graph) Train() (Stats, error) {
	if g.Loss == nil {
		return Stats{}, ErrNoLoss
	}
	stats, err := g.evaluate(true)
	if err != nil {
		return Stats{}, err
	}
	if err := g.Backward(); err != nil {
		return Stats{}, err
	}
	if g.Solver != nil && g.Model != nil {
		stats.Solver = g.Solver.Step(g.Model.params)
	}
	klog.V(2).Infof("train loss=%.5f accuracy=%d/%d", stats.Loss, stats.Correct, stats.Total)
	return stats, nil
}

/*
Test runs forward and the loss without touching gradients or parameters.
*/
func (g *Graph) Test() (Stats, error) {
	if g.Loss == nil {
		return Stats{}, ErrNoLoss
	}
	return g.evaluate(false)
}

func (g *Graph) evaluate(withGrad bool) (Stats, error) {
	if g.err != nil {
		return Stats{}, g.err
	}
	if g.output == nil || g.expect == nil {
		return Stats{}, ErrNoOutput
	}
	if err := g.Forward(); err != nil {
		return Stats{}, err
	}
	return g.Loss.Eval(g.output.Value, g.expect, withGrad)
}

func (g *Graph) add(n *Node) *Node {
	n.graph = g
	n.gen = g.gen
	g.nodes = append(g.nodes, n)
	return n
}

func (g *Graph) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

// dead is what operators hand back once the graph has failed.
func (g *Graph) dead(op string) *Node {
	return &Node{op: op, graph: g, gen: g.gen}
}

// ready checks operands before an operator is built on them.
func (g *Graph) ready(op string, inputs ...*Node) bool {
	if g.err != nil {
		return false
	}
	for _, in := range inputs {
		switch {
		case in == nil:
			g.fail(errors.Wrapf(ErrUnboundInput, "%s: nil operand", op))
		case in.op == opParam:
			if !g.Model.owns(in) {
				g.fail(errors.Wrapf(ErrStaleNode, "%s: parameter %q belongs to another model", op, in.name))
			}
		case in.graph != g || in.gen != g.gen:
			g.fail(errors.Wrapf(ErrStaleNode, "%s: %s operand", op, in.op))
		case in.Value == nil:
			g.fail(errors.Wrapf(ErrUnboundInput, "%s: %s operand", op, in.op))
		}
		if g.err != nil {
			return false
		}
	}
	return true
}
