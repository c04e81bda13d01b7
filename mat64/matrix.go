/*
Package mat64 holds the dense float64 tensors that flow through a recurrent graph.

A Mat keeps its values in W and the gradient of the loss with respect to
those values in DW. Both are stored row-major; the last dimension of Shape
is the column count and every leading dimension is folded into rows.
*/
package mat64

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

/*
Mat holds a tensor and its gradient.
*/
type Mat struct {
	Shape []int
	W     []float64
	DW    []float64
}

func zeros(size int) []float64 {
	// no need to initialize zero values
	return make([]float64, size)
}

/*
NewMat instantiates a zero-filled tensor with the given shape.
*/
func NewMat(shape ...int) *Mat {
	n := Size(shape)
	return &Mat{
		Shape: slices.Clone(shape),
		W:     zeros(n),
		DW:    zeros(n),
	}
}

/*
FromValues wraps w, without copying, as a tensor of the given shape.
It panics when len(w) does not match the shape.
*/
func FromValues(w []float64, shape ...int) *Mat {
	if len(w) != Size(shape) {
		panic("mat64: value count does not match shape")
	}
	return &Mat{
		Shape: slices.Clone(shape),
		W:     w,
		DW:    zeros(len(w)),
	}
}

// Size is the number of elements a tensor of this shape holds.
func Size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Size is the number of elements in m.
func (m *Mat) Size() int {
	return len(m.W)
}

// Cols is the size of the last dimension. A scalar has one column.
func (m *Mat) Cols() int {
	if len(m.Shape) == 0 {
		return 1
	}
	return m.Shape[len(m.Shape)-1]
}

// Rows is the product of every dimension but the last.
func (m *Mat) Rows() int {
	if len(m.Shape) == 0 {
		return 1
	}
	return Size(m.Shape[:len(m.Shape)-1])
}

// SameShape reports whether m and o have identical shapes.
func (m *Mat) SameShape(o *Mat) bool {
	return slices.Equal(m.Shape, o.Shape)
}

// Row returns row i of the values as a slice sharing storage with m.
func (m *Mat) Row(i int) []float64 {
	c := m.Cols()
	return m.W[i*c : (i+1)*c]
}

// Fill sets every value to v.
func (m *Mat) Fill(v float64) {
	for i := range m.W {
		m.W[i] = v
	}
}

/*
ZeroGrad clears DW, ready for a new backward pass.
*/
func (m *Mat) ZeroGrad() {
	for i := range m.DW {
		m.DW[i] = 0
	}
}

/*
Clone deep-copies values and gradients.
*/
func (m *Mat) Clone() *Mat {
	return &Mat{
		Shape: slices.Clone(m.Shape),
		W:     slices.Clone(m.W),
		DW:    slices.Clone(m.DW),
	}
}

/*
Dense views W as a Rows x Cols gonum matrix. Writes through the view change m.
It returns nil for an empty tensor, which gonum cannot represent.
*/
func (m *Mat) Dense() *mat.Dense {
	if m.Size() == 0 {
		return nil
	}
	return mat.NewDense(m.Rows(), m.Cols(), m.W)
}

/*
GradDense is Dense for DW.
*/
func (m *Mat) GradDense() *mat.Dense {
	if m.Size() == 0 {
		return nil
	}
	return mat.NewDense(m.Rows(), m.Cols(), m.DW)
}
