package model

import "context"

// State is an opaque snapshot of a step model's recurrent state. A State
// belongs to exactly one hypothesis: implementations return a fresh value
// from every Step call and never mutate a State after handing it out.
type State any

// Prediction is the model output for one batch element: a probability
// distribution over the vocabulary plus the state to carry forward.
type Prediction struct {
	Probs []float32
	State State
}

// StepModel is the capability interface consumed by the beam decoder.
//
// Initialize runs the model over its input (for a captioning model, the
// encoded image bytes) and returns the initial decoder state. Step advances
// a whole batch of hypotheses at once: lastTokens[i] and states[i] describe
// hypothesis i, and the returned slice holds one Prediction per input
// element in the same order.
type StepModel interface {
	Initialize(ctx context.Context, input []byte) (State, error)
	Step(ctx context.Context, lastTokens []int32, states []State) ([]Prediction, error)
}
