package recurrent

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/ruffrey/lstm-char-go/mat64"
)

func TestLogLoss(t *testing.T) {
	t.Run("loss, accuracy and gradient", func(t *testing.T) {
		actual := mat64.FromValues([]float64{0.25, 0.75, 0.5, 0.5}, 1, 2, 2)
		expect := mat64.FromValues([]float64{1, 0}, 1, 2)
		stats, err := LogLoss{}.Eval(actual, expect, true)
		if err != nil {
			t.Fatal(err)
		}
		want := (-math.Log(0.75) - math.Log(0.5)) / 2
		if math.Abs(stats.Loss-want) > 1e-12 {
			t.Errorf("Loss = %v, want %v", stats.Loss, want)
		}
		if stats.Correct != 2 || stats.Total != 2 {
			t.Errorf("accuracy %d/%d", stats.Correct, stats.Total)
		}
		wantGrad := []float64{0, -1 / 0.75, -1 / 0.5, 0}
		for i := range wantGrad {
			if math.Abs(actual.DW[i]-wantGrad[i]) > 1e-12 {
				t.Fatalf("DW = %v, want %v", actual.DW, wantGrad)
			}
		}
	})
	t.Run("gradient is averaged over the batch", func(t *testing.T) {
		actual := mat64.FromValues([]float64{0.5, 0.5, 0.5, 0.5}, 2, 2)
		expect := mat64.FromValues([]float64{0, 1}, 2)
		if _, err := (LogLoss{}).Eval(actual, expect, true); err != nil {
			t.Fatal(err)
		}
		if actual.DW[0] != -1 || actual.DW[3] != -1 {
			t.Errorf("DW = %v", actual.DW)
		}
	})
	t.Run("no gradient when testing", func(t *testing.T) {
		actual := mat64.FromValues([]float64{0.5, 0.5}, 1, 2)
		expect := mat64.FromValues([]float64{0}, 1)
		if _, err := (LogLoss{}).Eval(actual, expect, false); err != nil {
			t.Fatal(err)
		}
		if actual.DW[0] != 0 {
			t.Errorf("DW = %v", actual.DW)
		}
	})
	t.Run("zero probability is clipped", func(t *testing.T) {
		actual := mat64.FromValues([]float64{1, 0}, 1, 2)
		expect := mat64.FromValues([]float64{1}, 1)
		stats, err := LogLoss{}.Eval(actual, expect, false)
		if err != nil {
			t.Fatal(err)
		}
		if math.IsInf(stats.Loss, 0) || stats.Loss <= 0 {
			t.Errorf("Loss = %v", stats.Loss)
		}
	})
	t.Run("expectation shape must match", func(t *testing.T) {
		actual := mat64.NewMat(1, 2, 3)
		expect := mat64.NewMat(1, 3)
		if _, err := (LogLoss{}).Eval(actual, expect, false); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("Eval() = %v", err)
		}
	})
	t.Run("class ids must be in range", func(t *testing.T) {
		actual := mat64.NewMat(1, 2)
		expect := mat64.FromValues([]float64{2}, 1)
		if _, err := (LogLoss{}).Eval(actual, expect, false); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Eval() = %v", err)
		}
	})
}
