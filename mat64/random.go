package mat64

import (
	"math/rand"
)

/*
NewRand returns a random source seeded with seed. Every random draw in a
model goes through one of these so that runs are reproducible.
*/
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

/*
Randf makes random numbers in [a, b).
*/
func Randf(r *rand.Rand, a float64, b float64) float64 {
	return r.Float64()*(b-a) + a
}

/*
Randomize overwrites every weight of m with a number drawn uniformly from
[-std, std). Gradients are left alone.
*/
func (m *Mat) Randomize(r *rand.Rand, std float64) {
	for i := range m.W {
		m.W[i] = Randf(r, -std, std)
	}
}
