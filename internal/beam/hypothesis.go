package beam

import "github.com/samcharles93/imcap/internal/model"

// Hypothesis is one partial or complete candidate sequence. Tokens always
// starts with the configured start token. Logprob accumulates ln(p) over
// the chosen tokens; Score equals Logprob except for completed hypotheses
// under length normalization. Ranking considers Score alone: hypotheses
// with equal scores are interchangeable.
type Hypothesis struct {
	Tokens  []int32
	State   model.State
	Logprob float64
	Score   float64
}

// extend builds the child reached by appending tok. The parent is left
// untouched; the child gets its own token slice and the state produced by
// the model step that scored tok.
func (h Hypothesis) extend(tok int32, logprob, score float64, state model.State) Hypothesis {
	tokens := make([]int32, len(h.Tokens)+1)
	copy(tokens, h.Tokens)
	tokens[len(h.Tokens)] = tok
	return Hypothesis{
		Tokens:  tokens,
		State:   state,
		Logprob: logprob,
		Score:   score,
	}
}

func hypothesisScore(h Hypothesis) float64 { return h.Score }
