package recurrent

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ruffrey/lstm-char-go/mat64"
)

/*
Model is the table of trainable parameters. Graphs hold it by reference and
never copy a parameter, so a Model may back several graphs at once, for
example a training graph and a prediction graph.
*/
type Model struct {
	params []*Node
	byName map[string]*Node
	rand   *rand.Rand
}

/*
NewModel instantiates an empty Model whose initializers draw from a source seeded with seed.
*/
func NewModel(seed int64) *Model {
	return &Model{
		byName: make(map[string]*Node),
		rand:   mat64.NewRand(seed),
	}
}

/*
Param allocates a named parameter of the given shape and fills it with init.
A nil init means Xavier. Names must be unique within a Model.
*/
func (m *Model) Param(name string, init Initializer, shape ...int) *Node {
	if _, ok := m.byName[name]; ok {
		panic(fmt.Sprintf("recurrent: duplicate parameter %q", name))
	}
	if init == nil {
		init = Xavier{}
	}
	value := mat64.NewMat(shape...)
	init.Init(m.rand, value)

	p := &Node{Value: value, op: opParam, name: name}
	m.params = append(m.params, p)
	m.byName[name] = p
	return p
}

// Params lists the parameters in allocation order.
func (m *Model) Params() []*Node {
	return m.params
}

// Lookup returns the parameter called name, or nil.
func (m *Model) Lookup(name string) *Node {
	return m.byName[name]
}

func (m *Model) owns(n *Node) bool {
	return m != nil && m.byName[n.name] == n
}

/*
Initializer fills a freshly allocated parameter.
*/
type Initializer interface {
	Init(r *rand.Rand, m *mat64.Mat)
}

// Zero leaves the parameter zero-filled. Used for biases.
type Zero struct{}

func (Zero) Init(*rand.Rand, *mat64.Mat) {}

/*
Xavier draws uniformly from ±sqrt(6/(fanIn+fanOut)). A vector counts its
length as both fan-in and fan-out.
*/
type Xavier struct{}

func (Xavier) Init(r *rand.Rand, m *mat64.Mat) {
	fanIn, fanOut := m.Rows(), m.Cols()
	if len(m.Shape) < 2 {
		fanIn = fanOut
	}
	if fanIn+fanOut == 0 {
		return
	}
	m.Randomize(r, math.Sqrt(6/float64(fanIn+fanOut)))
}

// Uniform draws from [-Std, Std).
type Uniform struct {
	Std float64
}

func (u Uniform) Init(r *rand.Rand, m *mat64.Mat) {
	m.Randomize(r, u.Std)
}
