package mat64

import (
	"math"
	"testing"
)

func TestRandom(t *testing.T) {
	r := NewRand(1)
	t.Run("Randf() produces a random number between two others", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			v := Randf(r, 1, 6)
			if v < 1 || v > 6 {
				t.Fail()
			}
		}
	})
	t.Run("the same seed gives the same tensor", func(t *testing.T) {
		a, b := NewMat(3, 3), NewMat(3, 3)
		a.Randomize(NewRand(7), 0.08)
		b.Randomize(NewRand(7), 0.08)
		for i := range a.W {
			if a.W[i] != b.W[i] {
				t.Fatalf("values differ at %d", i)
			}
			if math.Abs(a.W[i]) > 0.08 {
				t.Fatalf("value %v out of range", a.W[i])
			}
		}
	})
	t.Run("Randomize() leaves gradients alone", func(t *testing.T) {
		m := NewMat(2, 2)
		m.DW[1] = 3
		m.Randomize(r, 1)
		if m.DW[0] != 0 || m.DW[1] != 3 {
			t.Errorf("DW = %v", m.DW)
		}
	})
}
