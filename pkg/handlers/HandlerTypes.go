package handlers

import "github.com/lapis-ps/paramserver/pkg/clog"


//=========================================== Handler Types


const NAME = "Handlers"

var Log = clog.NewCustomLog(NAME)

/*
	Vector is the concrete numeric representation handlers operate on --
	the network core never looks inside it; PutRequestPayload/
	GetResponsePayload carry it JSON-encoded in their opaque Value field
	(spec.md §6: "the training algorithm... is out of scope" for the
	transport/queue/pool layers, but a handler still needs *some* concrete
	numeric type to update).
*/

type Vector []float64

/*
	Value is what a handler actually stores per key: the parameters
	themselves plus whatever auxiliary state the update rule needs carried
	forward (momentum velocity for SGD, the squared-gradient accumulator
	for AdaGrad). Keeping Aux alongside Params in the same returned value --
	rather than inside private handler state -- mirrors TVal in
	original_source, where the history needed by the update rule lives in
	the value itself, not the handler.
*/

type Value struct {
	Params Vector
	Aux    Vector
}

/*
	Handler is the capability set every table-server handler variant must
	implement -- component G, translated from TableServerHandler /
	TSHandlerForSGD / TSHandlerForAda in original_source/include/server.h.
*/

type Handler interface {
	Setup(cfg HandlerConfig) error
	Put(key string, existing Value, incoming Value) (Value, error)
	Get(key string, value Value) (Value, error)
	Update(step int, origin Value, update Value) (Value, error)
	CheckpointNow(key string, step int) bool
}

/*
	LRSchedule names how the learning rate changes over training steps,
	mirroring SGDProto_ChangeProto's fixed/step/exp/poly/inverse variants.
*/

type LRSchedule string

const (
	Fixed       LRSchedule = "fixed"
	Step        LRSchedule = "step"
	Exponential LRSchedule = "exp"
	Polynomial  LRSchedule = "poly"
	Inverse     LRSchedule = "inverse"
)

/*
	HandlerConfig is Setup's argument, translated field-for-field from
	SGDProto as named in spec.md §6.
*/

type HandlerConfig struct {
	LearningRate            float64
	Gamma                   float64
	Momentum                float64
	WeightDecay             float64
	LearningRateChange      LRSchedule
	LearningRateChangeSteps int

	CheckpointAfter     int
	CheckpointFrequency int
}

/*
	checkpointNow is shared by every handler variant: persistence begins
	after CheckpointAfter steps and recurs every CheckpointFrequency steps
	thereafter (spec.md §6).
*/

func checkpointNow(cfg HandlerConfig, step int) bool {
	if step < cfg.CheckpointAfter { return false }
	if cfg.CheckpointFrequency <= 0 { return step == cfg.CheckpointAfter }

	return (step-cfg.CheckpointAfter)%cfg.CheckpointFrequency == 0
}
