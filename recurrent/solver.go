package recurrent

import (
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
)

/*
Solver applies accumulated gradients to parameters.
*/
type Solver interface {
	Step(params []*Node) SolverStats
}

/*
SolverStats is the result of running the solver.
*/
type SolverStats map[string]float64

/*
SGD is stochastic gradient descent with per-parameter gradient-norm clipping
and a learning rate that shrinks by Decay on every WeightDecay.
*/
type SGD struct {
	LearningRate float64
	Decay        float64
	GradClip     float64 // clip each parameter's gradient to this L2 norm; 0 disables
}

/*
NewSGD instantiates an SGD solver.
*/
func NewSGD(learningRate, decay, gradClip float64) *SGD {
	return &SGD{
		LearningRate: learningRate,
		Decay:        decay,
		GradClip:     gradClip,
	}
}

/*
Step does a step: W -= LearningRate * clip(DW) for every parameter, then
resets gradients for the next iteration.
*/
func (s *SGD) Step(params []*Node) SolverStats {
	stats := SolverStats{"learning_rate": s.LearningRate}
	numClipped := 0.0
	for _, p := range params {
		m := p.Value
		scale := 1.0
		if s.GradClip > 0 {
			if norm := floats.Norm(m.DW, 2); norm > s.GradClip {
				scale = s.GradClip / norm
				numClipped++
				klog.V(4).Infof("clipped gradient of %s: norm %.4f", p.name, norm)
			}
		}
		floats.AddScaled(m.W, -s.LearningRate*scale, m.DW)
		m.ZeroGrad()
	}
	if len(params) > 0 {
		stats["ratio_clipped"] = numClipped / float64(len(params))
	}
	return stats
}

/*
WeightDecay shrinks the learning rate. Call it once per epoch.
*/
func (s *SGD) WeightDecay() {
	s.LearningRate *= s.Decay
	klog.V(1).Infof("learning rate decayed to %g", s.LearningRate)
}
