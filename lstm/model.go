package lstm

import (
	"github.com/pkg/errors"

	"github.com/ruffrey/lstm-char-go/config"
	"github.com/ruffrey/lstm-char-go/mat64"
	"github.com/ruffrey/lstm-char-go/recurrent"
)

/*
Params is the shared parameter set of one LSTM language model. Every graph
built from it, training or prediction, uses these exact nodes.
*/
type Params struct {
	Model     *recurrent.Model
	NumChar   int
	HiddenDim int

	// C2V embeds characters: [NumChar, HiddenDim].
	C2V *recurrent.Node

	// Gate weights [2*HiddenDim, HiddenDim] and biases [HiddenDim].
	Wf, Bf *recurrent.Node
	Wi, Bi *recurrent.Node
	Wc, Bc *recurrent.Node
	Wo, Bo *recurrent.Node

	// V projects hidden state to character logits: [HiddenDim, NumChar].
	V *recurrent.Node
}

/*
NewParams allocates the LSTM parameters in model. Weights are Xavier
initialized and biases start at zero.
*/
func NewParams(model *recurrent.Model, numChar, hiddenDim int) *Params {
	h := hiddenDim
	return &Params{
		Model:     model,
		NumChar:   numChar,
		HiddenDim: hiddenDim,

		C2V: model.Param("C2V", recurrent.Xavier{}, numChar, h),
		Wf:  model.Param("wf", recurrent.Xavier{}, 2*h, h),
		Bf:  model.Param("bf", recurrent.Zero{}, h),
		Wi:  model.Param("wi", recurrent.Xavier{}, 2*h, h),
		Bi:  model.Param("bi", recurrent.Zero{}, h),
		Wc:  model.Param("wc", recurrent.Xavier{}, 2*h, h),
		Bc:  model.Param("bc", recurrent.Zero{}, h),
		Wo:  model.Param("wo", recurrent.Xavier{}, 2*h, h),
		Bo:  model.Param("bo", recurrent.Zero{}, h),
		V:   model.Param("V", recurrent.Xavier{}, h, numChar),
	}
}

// All lists the parameters in a fixed order.
func (p *Params) All() []*recurrent.Node {
	return []*recurrent.Node{p.C2V, p.Wf, p.Bf, p.Wi, p.Bi, p.Wc, p.Bc, p.Wo, p.Bo, p.V}
}

func (p *Params) check() error {
	if p == nil || p.Model == nil {
		return ErrUnboundParameter
	}
	for _, n := range p.All() {
		if n == nil {
			return ErrUnboundParameter
		}
	}
	return nil
}

func (p *Params) checkTokens(tokens []int) error {
	for _, tok := range tokens {
		if tok < 0 || tok >= p.NumChar {
			return errors.Wrapf(ErrTokenOutOfRange, "token %d, vocabulary size %d", tok, p.NumChar)
		}
	}
	return nil
}

// zeroState binds the initial hidden and cell state for a batch of b sequences.
func (p *Params) zeroState(g *recurrent.Graph, b int) State {
	h0 := g.Input()
	h0.Set(mat64.NewMat(b, p.HiddenDim))
	c0 := g.Input()
	c0.Set(mat64.NewMat(b, p.HiddenDim))
	return State{H: h0, C: c0}
}

/*
New allocates a model described by cfg and returns a training graph and a
prediction graph that share its parameters.
*/
func New(cfg *config.Config) (*TrainGraph, *PredictGraph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	p := NewParams(recurrent.NewModel(cfg.Seed), cfg.NumChar, cfg.HiddenDim)
	solver := recurrent.NewSGD(cfg.LearningRate, cfg.Decay, cfg.GradClip)
	return NewTrainGraph(p, solver), NewPredictGraph(p), nil
}
