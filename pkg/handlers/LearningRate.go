package handlers

import "math"


//=========================================== Learning Rate Schedule


/*
	updateHyperParam computes the learning rate at step under the named
	schedule -- translated from TSHandlerForSGD::UpdateHyperParam, whose
	body wasn't present in original_source (only the header declaration
	was retrieved); the five schedules are implemented per their standard
	textbook form, named exactly as SGDProto_ChangeProto does (see
	DESIGN.md).

	changeSteps is the step interval the step/poly schedules decay over;
	gamma is the decay rate shared by step/exp/poly/inverse.
*/

func updateHyperParam(step int, change LRSchedule, changeSteps int, base float64, gamma float64) float64 {
	switch change {
		case Fixed:
			return base
		case Step:
			if changeSteps <= 0 { return base }
			exponent := math.Floor(float64(step) / float64(changeSteps))
			return base * math.Pow(gamma, exponent)
		case Exponential:
			return base * math.Pow(gamma, float64(step))
		case Polynomial:
			if changeSteps <= 0 { return base }
			fraction := 1.0 - float64(step)/float64(changeSteps)
			if fraction < 0 { fraction = 0 }
			return base * math.Pow(fraction, gamma)
		case Inverse:
			return base / math.Pow(1.0+gamma*float64(step), gamma)
		default:
			return base
	}
}
