package handlers


//=========================================== Momentum-SGD Handler


const SGDName = "SGD"

/*
	sgdHandler applies momentum, weight decay and a named learning-rate
	schedule during Update -- translated from TSHandlerForSGD. It is
	stateless itself: Aux on the returned Value carries the momentum
	velocity forward between calls, the way TVal carries history in
	original_source.
*/

type sgdHandler struct {
	cfg HandlerConfig
}

func NewSGDHandler() Handler {
	return &sgdHandler{}
}

func (h *sgdHandler) Setup(cfg HandlerConfig) error {
	h.cfg = cfg
	return nil
}

/*
	Put installs incoming as the initial value for key -- mirrors
	TSHandlerForSGD::Put, a straight copy with no hyperparameter applied.
	Aux starts as a zero velocity vector the same length as Params.
*/

func (h *sgdHandler) Put(key string, existing Value, incoming Value) (Value, error) {
	return Value{
		Params: append(Vector{}, incoming.Params...),
		Aux:    make(Vector, len(incoming.Params)),
	}, nil
}

/*
	Get returns value unmodified -- momentum-SGD applies its hyperparameters
	at Update time, not at read time.
*/

func (h *sgdHandler) Get(key string, value Value) (Value, error) {
	return value, nil
}

/*
	Update applies v_{t+1} = momentum*v_t - lr*(update + weight_decay*origin);
	origin_{t+1} = origin_t + v_{t+1} -- classical momentum-SGD, mirroring
	TSHandlerForSGD::Update's use of GetLearningRate/GetWeightDecay/
	GetMomentum.
*/

func (h *sgdHandler) Update(step int, origin Value, update Value) (Value, error) {
	lr := updateHyperParam(step, h.cfg.LearningRateChange, h.cfg.LearningRateChangeSteps, h.cfg.LearningRate, h.cfg.Gamma)
	wd := h.cfg.WeightDecay
	momentum := h.cfg.Momentum

	velocity := origin.Aux
	if len(velocity) != len(origin.Params) { velocity = make(Vector, len(origin.Params)) }

	nextParams := make(Vector, len(origin.Params))
	nextVelocity := make(Vector, len(origin.Params))

	for i := range origin.Params {
		grad := update.Params[i] + wd*origin.Params[i]
		nextVelocity[i] = momentum*velocity[i] - lr*grad
		nextParams[i] = origin.Params[i] + nextVelocity[i]
	}

	return Value{Params: nextParams, Aux: nextVelocity}, nil
}

func (h *sgdHandler) CheckpointNow(key string, step int) bool {
	return checkpointNow(h.cfg, step)
}
