package handlers

import "math"


//=========================================== AdaGrad Handler


const AdaGradName = "AdaGrad"

const adaGradEpsilon = 1e-8

/*
	adaGradHandler scales each coordinate's learning rate by the inverse
	root of that coordinate's accumulated squared gradient -- translated
	from TSHandlerForAda. Aux on Value carries the per-coordinate
	accumulator forward, same convention as sgdHandler's velocity.
*/

type adaGradHandler struct {
	cfg HandlerConfig
}

func NewAdaGradHandler() Handler {
	return &adaGradHandler{}
}

func (h *adaGradHandler) Setup(cfg HandlerConfig) error {
	h.cfg = cfg
	return nil
}

func (h *adaGradHandler) Put(key string, existing Value, incoming Value) (Value, error) {
	return Value{
		Params: append(Vector{}, incoming.Params...),
		Aux:    make(Vector, len(incoming.Params)),
	}, nil
}

/*
	Get scales the learning rate applied to value by the inverse root of
	the accumulator before returning it -- mirrors TSHandlerForAda::Get.
	Guards against a shorter Aux the same way Update does before indexing
	Params in lockstep with it.
*/

func (h *adaGradHandler) Get(key string, value Value) (Value, error) {
	lr := h.cfg.LearningRate
	accumulator := value.Aux
	if len(accumulator) != len(value.Params) { accumulator = make(Vector, len(value.Params)) }

	scaled := make(Vector, len(value.Params))
	for i, accum := range accumulator {
		scale := lr / math.Sqrt(accum+adaGradEpsilon)
		scaled[i] = value.Params[i] * scale
	}

	return Value{Params: scaled, Aux: accumulator}, nil
}

/*
	Update accumulates update^2 into Aux and applies the adapted step to
	Params -- mirrors TSHandlerForAda::Update.
*/

func (h *adaGradHandler) Update(step int, origin Value, update Value) (Value, error) {
	accumulator := origin.Aux
	if len(accumulator) != len(origin.Params) { accumulator = make(Vector, len(origin.Params)) }

	nextParams := make(Vector, len(origin.Params))
	nextAccum := make(Vector, len(origin.Params))

	for i := range origin.Params {
		grad := update.Params[i]
		nextAccum[i] = accumulator[i] + grad*grad
		scale := h.cfg.LearningRate / math.Sqrt(nextAccum[i]+adaGradEpsilon)
		nextParams[i] = origin.Params[i] - scale*grad
	}

	return Value{Params: nextParams, Aux: nextAccum}, nil
}

func (h *adaGradHandler) CheckpointNow(key string, step int) bool {
	return checkpointNow(h.cfg, step)
}
