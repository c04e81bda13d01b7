package mat64

import "math"

/*
Softmax writes the softmax of w into out. The two may be the same slice.
*/
func Softmax(w []float64, out []float64) {
	if len(w) == 0 {
		return
	}
	maxval := math.Inf(-1)
	for _, v := range w {
		if v > maxval {
			maxval = v
		}
	}

	s := 0.0
	for i, v := range w {
		out[i] = math.Exp(v - maxval)
		s += out[i]
	}
	for i := range out[:len(w)] {
		out[i] /= s
	}
}

/*
ArgmaxI returns the index of the largest value in w. Ties go to the lowest index.
It returns -1 for an empty slice.
*/
func ArgmaxI(w []float64) int {
	if len(w) == 0 {
		return -1
	}
	maxv := w[0]
	maxix := 0
	for i := 1; i < len(w); i++ {
		if w[i] > maxv {
			maxix = i
			maxv = w[i]
		}
	}
	return maxix
}
