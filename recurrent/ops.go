package recurrent

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"

	"github.com/ruffrey/lstm-char-go/mat64"
)

func (g *Graph) op(op string, shape []int, inputs ...*Node) *Node {
	return g.add(&Node{
		Value:  mat64.NewMat(shape...),
		op:     op,
		inputs: inputs,
	})
}

func leading(shape []int) []int {
	if len(shape) == 0 {
		return nil
	}
	return shape[:len(shape)-1]
}

/*
Concat joins a and b along their last dimension.
*/
func (g *Graph) Concat(a, b *Node) *Node {
	if !g.ready("concat", a, b) {
		return g.dead("concat")
	}
	m1, m2 := a.Value, b.Value
	if len(m1.Shape) == 0 || !slices.Equal(leading(m1.Shape), leading(m2.Shape)) {
		g.fail(errors.Wrapf(ErrShapeMismatch, "concat: %v and %v", m1.Shape, m2.Shape))
		return g.dead("concat")
	}
	c1, c2 := m1.Cols(), m2.Cols()
	d := c1 + c2
	out := g.op("concat", append(slices.Clone(leading(m1.Shape)), d), a, b)
	rows := m1.Rows()

	out.forward = func() error {
		for r := 0; r < rows; r++ {
			copy(out.Value.W[r*d:r*d+c1], m1.W[r*c1:(r+1)*c1])
			copy(out.Value.W[r*d+c1:(r+1)*d], m2.W[r*c2:(r+1)*c2])
		}
		return nil
	}
	out.backward = func() {
		for r := 0; r < rows; r++ {
			for j := 0; j < c1; j++ {
				m1.DW[r*c1+j] += out.Value.DW[r*d+j]
			}
			for j := 0; j < c2; j++ {
				m2.DW[r*c2+j] += out.Value.DW[r*d+c1+j]
			}
		}
	}
	return out
}

/*
Add adds two tensors. The shape of b must equal a trailing part of the
shape of a; a bias vector is broadcast over every row that way.
*/
func (g *Graph) Add(a, b *Node) *Node {
	if !g.ready("add", a, b) {
		return g.dead("add")
	}
	m1, m2 := a.Value, b.Value
	la, lb := len(m1.Shape), len(m2.Shape)
	if lb > la || !slices.Equal(m1.Shape[la-lb:], m2.Shape) {
		g.fail(errors.Wrapf(ErrShapeMismatch, "add: %v and %v", m1.Shape, m2.Shape))
		return g.dead("add")
	}
	out := g.op("add", m1.Shape, a, b)
	n, nb := m1.Size(), m2.Size()

	out.forward = func() error {
		for i := 0; i < n; i++ {
			out.Value.W[i] = m1.W[i] + m2.W[i%nb]
		}
		return nil
	}
	out.backward = func() {
		for i := 0; i < n; i++ {
			m1.DW[i] += out.Value.DW[i]
			m2.DW[i%nb] += out.Value.DW[i]
		}
	}
	return out
}

/*
Eltmul does element-wise multiplication.
*/
func (g *Graph) Eltmul(a, b *Node) *Node {
	if !g.ready("eltmul", a, b) {
		return g.dead("eltmul")
	}
	m1, m2 := a.Value, b.Value
	if !m1.SameShape(m2) {
		g.fail(errors.Wrapf(ErrShapeMismatch, "eltmul: %v and %v", m1.Shape, m2.Shape))
		return g.dead("eltmul")
	}
	out := g.op("eltmul", m1.Shape, a, b)

	out.forward = func() error {
		for i := range out.Value.W {
			out.Value.W[i] = m1.W[i] * m2.W[i]
		}
		return nil
	}
	out.backward = func() {
		for i := range out.Value.DW {
			m1.DW[i] += m2.W[i] * out.Value.DW[i]
			m2.DW[i] += m1.W[i] * out.Value.DW[i]
		}
	}
	return out
}

/*
Sigmoid does sigmoid nonlinearity.
*/
func (g *Graph) Sigmoid(a *Node) *Node {
	if !g.ready("sigmoid", a) {
		return g.dead("sigmoid")
	}
	m := a.Value
	out := g.op("sigmoid", m.Shape, a)

	out.forward = func() error {
		for i, v := range m.W {
			out.Value.W[i] = 1.0 / (1 + math.Exp(-v))
		}
		return nil
	}
	out.backward = func() {
		for i, z := range out.Value.W {
			m.DW[i] += z * (1.0 - z) * out.Value.DW[i]
		}
	}
	return out
}

/*
Tanh does tanh nonlinearity.
*/
func (g *Graph) Tanh(a *Node) *Node {
	if !g.ready("tanh", a) {
		return g.dead("tanh")
	}
	m := a.Value
	out := g.op("tanh", m.Shape, a)

	out.forward = func() error {
		for i, v := range m.W {
			out.Value.W[i] = math.Tanh(v)
		}
		return nil
	}
	out.backward = func() {
		for i, z := range out.Value.W {
			// grad for z = tanh(x) is (1 - z^2)
			m.DW[i] += (1.0 - z*z) * out.Value.DW[i]
		}
	}
	return out
}

/*
Dot multiplies a [..., K] by a matrix b [K, N], giving [..., N].
*/
func (g *Graph) Dot(a, b *Node) *Node {
	if !g.ready("dot", a, b) {
		return g.dead("dot")
	}
	m1, m2 := a.Value, b.Value
	if len(m1.Shape) == 0 || len(m2.Shape) != 2 || m1.Cols() != m2.Shape[0] {
		g.fail(errors.Wrapf(ErrShapeMismatch, "dot: %v x %v", m1.Shape, m2.Shape))
		return g.dead("dot")
	}
	out := g.op("dot", append(slices.Clone(leading(m1.Shape)), m2.Shape[1]), a, b)
	empty := m1.Size() == 0 || m2.Size() == 0

	out.forward = func() error {
		if empty {
			out.Value.Fill(0)
			return nil
		}
		out.Value.Dense().Mul(m1.Dense(), m2.Dense())
		return nil
	}
	out.backward = func() {
		if empty {
			return
		}
		dOut := out.Value.GradDense()

		var d1 mat.Dense
		d1.Mul(dOut, m2.Dense().T())
		g1 := m1.GradDense()
		g1.Add(g1, &d1)

		var d2 mat.Dense
		d2.Mul(m1.Dense().T(), dOut)
		g2 := m2.GradDense()
		g2.Add(g2, &d2)
	}
	return out
}

/*
Embed looks up one row of table [V, H] per id in ids, giving ids.Shape + [H].
Ids are whole numbers stored as float64, as produced by an input or by ArgMax.
Gradients flow into table only.
*/
func (g *Graph) Embed(ids, table *Node) *Node {
	if !g.ready("embed", ids, table) {
		return g.dead("embed")
	}
	x, t := ids.Value, table.Value
	if len(t.Shape) != 2 {
		g.fail(errors.Wrapf(ErrShapeMismatch, "embed: table shape %v", t.Shape))
		return g.dead("embed")
	}
	vocab, h := t.Shape[0], t.Shape[1]
	out := g.op("embed", append(slices.Clone(x.Shape), h), ids, table)

	row := func(i int) (int, error) {
		v := x.W[i]
		id := int(v)
		if float64(id) != v || id < 0 || id >= vocab {
			return 0, errors.Wrapf(ErrIndexOutOfRange, "embed: token %v outside [0, %d)", v, vocab)
		}
		return id, nil
	}
	out.forward = func() error {
		for i := range x.W {
			id, err := row(i)
			if err != nil {
				return err
			}
			copy(out.Value.W[i*h:(i+1)*h], t.Row(id))
		}
		return nil
	}
	out.backward = func() {
		for i := range x.W {
			// forward already validated every id
			id, _ := row(i)
			for j := 0; j < h; j++ {
				t.DW[id*h+j] += out.Value.DW[i*h+j]
			}
		}
	}
	return out
}

/*
Softmax normalizes each row of a over its last dimension.
*/
func (g *Graph) Softmax(a *Node) *Node {
	if !g.ready("softmax", a) {
		return g.dead("softmax")
	}
	m := a.Value
	out := g.op("softmax", m.Shape, a)
	rows, cols := m.Rows(), m.Cols()

	out.forward = func() error {
		for r := 0; r < rows; r++ {
			mat64.Softmax(m.W[r*cols:(r+1)*cols], out.Value.W[r*cols:(r+1)*cols])
		}
		return nil
	}
	out.backward = func() {
		y, dy := out.Value.W, out.Value.DW
		for r := 0; r < rows; r++ {
			lo, hi := r*cols, (r+1)*cols
			dot := 0.0
			for i := lo; i < hi; i++ {
				dot += y[i] * dy[i]
			}
			for i := lo; i < hi; i++ {
				m.DW[i] += y[i] * (dy[i] - dot)
			}
		}
	}
	return out
}

/*
ArgMax picks the index of the largest entry in each row of a. The result
drops the last dimension and is not differentiable.
*/
func (g *Graph) ArgMax(a *Node) *Node {
	if !g.ready("argmax", a) {
		return g.dead("argmax")
	}
	m := a.Value
	out := g.op("argmax", leading(m.Shape), a)
	rows, cols := m.Rows(), m.Cols()

	out.forward = func() error {
		for r := 0; r < rows; r++ {
			out.Value.W[r] = float64(mat64.ArgmaxI(m.W[r*cols : (r+1)*cols]))
		}
		return nil
	}
	return out
}

/*
Collect stacks same-shaped nodes [B, ...] along a new second axis, giving
[B, len(nodes), ...]. Index t of that axis is nodes[t]. The node list is
copied, so the caller may reuse its slice.
*/
func (g *Graph) Collect(nodes ...*Node) *Node {
	if len(nodes) == 0 {
		g.fail(errors.Wrap(ErrShapeMismatch, "collect: no nodes"))
		return g.dead("collect")
	}
	if !g.ready("collect", nodes...) {
		return g.dead("collect")
	}
	first := nodes[0].Value
	for _, n := range nodes[1:] {
		if !n.Value.SameShape(first) {
			g.fail(errors.Wrapf(ErrShapeMismatch, "collect: %v and %v", first.Shape, n.Value.Shape))
			return g.dead("collect")
		}
	}
	if len(first.Shape) == 0 {
		g.fail(errors.Wrap(ErrShapeMismatch, "collect: scalar operands"))
		return g.dead("collect")
	}
	batch, steps := first.Shape[0], len(nodes)
	inner := mat64.Size(first.Shape[1:])
	shape := append([]int{batch, steps}, first.Shape[1:]...)
	inputs := slices.Clone(nodes)
	out := g.op("collect", shape, inputs...)

	out.forward = func() error {
		for t, n := range inputs {
			for b := 0; b < batch; b++ {
				dst := (b*steps + t) * inner
				copy(out.Value.W[dst:dst+inner], n.Value.W[b*inner:(b+1)*inner])
			}
		}
		return nil
	}
	out.backward = func() {
		for t, n := range inputs {
			for b := 0; b < batch; b++ {
				src := (b*steps + t) * inner
				for k := 0; k < inner; k++ {
					n.Value.DW[b*inner+k] += out.Value.DW[src+k]
				}
			}
		}
	}
	return out
}
