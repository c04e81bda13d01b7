package recurrent

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/ruffrey/lstm-char-go/mat64"
)

// probabilities below this are clipped before taking the log
const minProbability = 1e-12

/*
Stats is the result of running a graph through its loss, and possibly its solver.
*/
type Stats struct {
	Loss    float64 // mean negative log-likelihood per predicted position
	Correct int     // positions whose arg-max matched the expectation
	Total   int
	Solver  SolverStats
}

// Accuracy is Correct / Total, or 0 when nothing was predicted.
func (s Stats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

/*
Loss compares a graph output with its expectation. With withGrad set it
writes the gradient of the loss into actual.DW.
*/
type Loss interface {
	Eval(actual, expect *mat64.Mat, withGrad bool) (Stats, error)
}

/*
LogLoss is the negative log-likelihood of the expected class under a
probability distribution over the last dimension of actual. expect holds
class ids and has the shape of actual minus its last dimension.

The reported loss is the mean over every position. The gradient is that of
the loss summed over all but the first (batch) dimension and averaged over
the batch.
*/
type LogLoss struct{}

func (LogLoss) Eval(actual, expect *mat64.Mat, withGrad bool) (Stats, error) {
	if len(actual.Shape) == 0 || !slices.Equal(leading(actual.Shape), expect.Shape) {
		return Stats{}, errors.Wrapf(ErrShapeMismatch, "log loss: output %v, expected %v", actual.Shape, expect.Shape)
	}
	classes := actual.Cols()
	batch := 1
	if len(actual.Shape) > 1 {
		batch = actual.Shape[0]
	}

	var stats Stats
	sum := 0.0
	for r, v := range expect.W {
		id := int(v)
		if float64(id) != v || id < 0 || id >= classes {
			return Stats{}, errors.Wrapf(ErrIndexOutOfRange, "log loss: class %v outside [0, %d)", v, classes)
		}
		row := actual.W[r*classes : (r+1)*classes]
		p := math.Max(row[id], minProbability)
		sum -= math.Log(p)
		if mat64.ArgmaxI(row) == id {
			stats.Correct++
		}
		if withGrad {
			actual.DW[r*classes+id] -= 1 / p / float64(batch)
		}
	}
	stats.Total = len(expect.W)
	if stats.Total > 0 {
		stats.Loss = sum / float64(stats.Total)
	}
	return stats, nil
}
