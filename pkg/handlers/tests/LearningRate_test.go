package handlerstests

import "math"
import "testing"

import "github.com/lapis-ps/paramserver/pkg/handlers"


/*
	TestLearningRateSchedules exercises all five named schedules through
	the public Update entry point (updateHyperParam itself is unexported,
	matching the teacher's TSHandlerForSGD::UpdateHyperParam being a
	private helper) by comparing SGD's single-coordinate, zero-momentum,
	zero-decay update against the closed form for each schedule.
*/

func TestLearningRateSchedules(t *testing.T) {
	cases := []struct {
		name        string
		schedule    handlers.LRSchedule
		step        int
		changeSteps int
		base        float64
		gamma       float64
		expectedLR  func() float64
	}{
		{ "fixed", handlers.Fixed, 50, 10, 0.1, 0.5, func() float64 { return 0.1 } },
		{ "step", handlers.Step, 25, 10, 0.1, 0.5, func() float64 { return 0.1 * math.Pow(0.5, math.Floor(25.0/10.0)) } },
		{ "exponential", handlers.Exponential, 3, 0, 0.1, 0.9, func() float64 { return 0.1 * math.Pow(0.9, 3) } },
		{ "polynomial", handlers.Polynomial, 5, 20, 0.1, 2.0, func() float64 { return 0.1 * math.Pow(1.0-5.0/20.0, 2.0) } },
		{ "inverse", handlers.Inverse, 4, 0, 0.1, 0.5, func() float64 { return 0.1 / math.Pow(1.0+0.5*4.0, 0.5) } },
	}

	for _, c := range cases {
		h := handlers.NewSGDHandler()
		setupErr := h.Setup(handlers.HandlerConfig{
			LearningRate:            c.base,
			Gamma:                   c.gamma,
			LearningRateChange:      c.schedule,
			LearningRateChangeSteps: c.changeSteps,
			Momentum:                0,
			WeightDecay:             0,
		})
		if setupErr != nil { t.Fatalf("%s: setup: %s", c.name, setupErr.Error()) }

		origin := handlers.Value{Params: handlers.Vector{0.0}, Aux: handlers.Vector{0.0}}
		update := handlers.Value{Params: handlers.Vector{1.0}}

		next, updateErr := h.Update(c.step, origin, update)
		if updateErr != nil { t.Fatalf("%s: update: %s", c.name, updateErr.Error()) }

		lr := c.expectedLR()
		expectedParam := -lr // momentum=0, weight_decay=0, grad=1 => velocity = -lr*1, param = 0 + velocity

		t.Logf("%s: step=%d lr=%v next param=%v", c.name, c.step, lr, next.Params[0])

		if !almostEqual(next.Params[0], expectedParam) {
			t.Errorf("%s schedule: expected param %v at step %d, got %v", c.name, expectedParam, c.step, next.Params[0])
		}
	}
}
