package handlerstests

import "math"
import "testing"

import "github.com/lapis-ps/paramserver/pkg/handlers"


func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSGDHandlerPutInstallsZeroVelocity(t *testing.T) {
	h := handlers.NewSGDHandler()
	if err := h.Setup(handlers.HandlerConfig{LearningRate: 0.1}); err != nil { t.Fatalf("setup: %s", err.Error()) }

	installed, err := h.Put("k", handlers.Value{}, handlers.Value{Params: handlers.Vector{1, 2, 3}})
	if err != nil { t.Fatalf("put: %s", err.Error()) }

	t.Logf("installed: params=%v aux=%v", installed.Params, installed.Aux)

	for i, v := range installed.Aux {
		if v != 0 { t.Errorf("expected zero initial velocity at %d, got %v", i, v) }
	}
	if len(installed.Params) != 3 || installed.Params[0] != 1 {
		t.Errorf("expected Put to install incoming params unmodified, got %v", installed.Params)
	}
}

/*
	TestSGDHandlerUpdateAppliesMomentum checks one fixed-schedule update
	step against the closed-form v = momentum*v0 - lr*(grad + wd*param);
	param' = param + v.
*/

func TestSGDHandlerUpdateAppliesMomentum(t *testing.T) {
	h := handlers.NewSGDHandler()
	cfg := handlers.HandlerConfig{
		LearningRate:       0.5,
		Momentum:           0.9,
		WeightDecay:        0.1,
		LearningRateChange: handlers.Fixed,
	}
	if err := h.Setup(cfg); err != nil { t.Fatalf("setup: %s", err.Error()) }

	origin := handlers.Value{Params: handlers.Vector{2.0}, Aux: handlers.Vector{0.3}}
	update := handlers.Value{Params: handlers.Vector{1.0}}

	next, err := h.Update(1, origin, update)
	if err != nil { t.Fatalf("update: %s", err.Error()) }

	grad := 1.0 + cfg.WeightDecay*2.0
	expectedVelocity := cfg.Momentum*0.3 - cfg.LearningRate*grad
	expectedParam := 2.0 + expectedVelocity

	t.Logf("next: params=%v aux=%v (expected param=%v velocity=%v)", next.Params, next.Aux, expectedParam, expectedVelocity)

	if !almostEqual(next.Aux[0], expectedVelocity) {
		t.Errorf("expected velocity %v, got %v", expectedVelocity, next.Aux[0])
	}
	if !almostEqual(next.Params[0], expectedParam) {
		t.Errorf("expected param %v, got %v", expectedParam, next.Params[0])
	}
}

func TestSGDHandlerCheckpointPolicy(t *testing.T) {
	h := handlers.NewSGDHandler()
	if err := h.Setup(handlers.HandlerConfig{CheckpointAfter: 10, CheckpointFrequency: 5}); err != nil { t.Fatalf("setup: %s", err.Error()) }

	cases := []struct{ step int; want bool }{
		{5, false},
		{10, true},
		{12, false},
		{15, true},
	}

	for _, c := range cases {
		got := h.CheckpointNow("k", c.step)
		t.Logf("step=%d want=%v got=%v", c.step, c.want, got)
		if got != c.want {
			t.Errorf("step %d: expected checkpoint=%v, got %v", c.step, c.want, got)
		}
	}
}
