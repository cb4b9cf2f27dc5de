// Package beam implements a generic beam-search decoder over a stepwise
// sequence model: starting from a single start token it repeatedly asks the
// model for next-token distributions, keeps the best-scored partial
// hypotheses in a bounded frontier, and collects hypotheses that emit the
// end token until the step budget runs out.
package beam

import (
	"context"
	"fmt"
	"math"

	"github.com/samcharles93/imcap/internal/model"
)

const (
	DefaultBeamWidth        = 3
	DefaultMaxSteps         = 20
	DefaultProbabilityFloor = 1e-12
)

// Config controls a Decoder. Zero values mean "use the default"; negative
// values are rejected.
type Config struct {
	// BeamWidth bounds both the frontier and the per-hypothesis fanout.
	BeamWidth int
	// MaxSteps bounds the number of tokens in any produced sequence,
	// start and end tokens included.
	MaxSteps int
	// LengthNormalization is the exponent alpha applied when a hypothesis
	// completes: score = logprob / len^alpha. Zero disables it.
	LengthNormalization float64
	// ProbabilityFloor is the minimum per-token probability a candidate
	// needs to be expanded. Candidates below it are skipped, which may
	// silently shrink the beam.
	ProbabilityFloor float64

	StartToken int32
	EndToken   int32
}

func (c Config) withDefaults() Config {
	if c.BeamWidth == 0 {
		c.BeamWidth = DefaultBeamWidth
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.ProbabilityFloor == 0 {
		c.ProbabilityFloor = DefaultProbabilityFloor
	}
	return c
}

func (c Config) validate() error {
	if c.BeamWidth < 1 {
		return fmt.Errorf("%w: beam width %d, want >= 1", ErrConfig, c.BeamWidth)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("%w: max steps %d, want >= 1", ErrConfig, c.MaxSteps)
	}
	if c.LengthNormalization < 0 {
		return fmt.Errorf("%w: length normalization %g, want >= 0", ErrConfig, c.LengthNormalization)
	}
	return nil
}

// Result is one decoded sequence, sentinels included, with its cumulative
// log-probability.
type Result struct {
	Tokens  []int32
	Logprob float64
}

// Decoder runs beam search against a StepModel. A Decoder is stateless
// between Decode calls; concurrent calls are safe as long as the model is
// reentrant.
type Decoder struct {
	cfg   Config
	model model.StepModel
}

// NewDecoder validates cfg (after applying defaults) and binds it to m.
func NewDecoder(m model.StepModel, cfg Config) (*Decoder, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Decoder{cfg: cfg, model: m}, nil
}

// Decode finds the highest-scoring sequences for input, best first, at most
// BeamWidth of them. Model faults abort the call; there is no partial
// output and no retry.
//
// The returned set is homogeneous: either every result emitted the end
// token (scores possibly length-normalized), or none did and the surviving
// frontier is returned ranked by raw log-probability. The two are never
// mixed, since their scores are not comparable.
func (d *Decoder) Decode(ctx context.Context, input []byte) ([]Result, error) {
	state0, err := d.model.Initialize(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("initialize model: %w", err)
	}

	frontier := NewTopSet[Hypothesis](d.cfg.BeamWidth, hypothesisScore)
	completed := NewTopSet[Hypothesis](d.cfg.BeamWidth, hypothesisScore)

	_ = frontier.Push(Hypothesis{
		Tokens: []int32{d.cfg.StartToken},
		State:  state0,
	})

	for step := 0; step < d.cfg.MaxSteps-1; step++ {
		active := frontier.Extract(false)
		frontier.Reset()
		if len(active) == 0 {
			// Everything completed already; happens e.g. with beam
			// width 1 once the single hypothesis emits the end token.
			break
		}

		lastTokens := make([]int32, len(active))
		states := make([]model.State, len(active))
		for i, h := range active {
			lastTokens[i] = h.Tokens[len(h.Tokens)-1]
			states[i] = h.State
		}

		preds, err := d.model.Step(ctx, lastTokens, states)
		if err != nil {
			return nil, fmt.Errorf("model step %d: %w", step, err)
		}
		if len(preds) != len(active) {
			return nil, fmt.Errorf("model step %d: got %d predictions for %d hypotheses", step, len(preds), len(active))
		}

		for i, h := range active {
			if err := d.expand(h, preds[i], frontier, completed); err != nil {
				return nil, err
			}
		}
	}

	// Partial hypotheses are only a fallback: their raw logprob scores do
	// not compare against length-normalized completed scores.
	result := completed
	if completed.Len() == 0 {
		result = frontier
	}

	best := result.Extract(true)
	out := make([]Result, len(best))
	for i, h := range best {
		out[i] = Result{Tokens: h.Tokens, Logprob: h.Logprob}
	}
	return out, nil
}

// expand routes the top-scored continuations of h into the frontier or the
// completed set.
func (d *Decoder) expand(h Hypothesis, pred model.Prediction, frontier, completed *TopSet[Hypothesis]) error {
	for _, c := range topCandidates(pred.Probs, d.cfg.BeamWidth) {
		p := float64(c.prob)
		if p < d.cfg.ProbabilityFloor {
			// Below the floor log(p) is unusable; drop the candidate
			// without replacement.
			continue
		}
		logprob := h.Logprob + math.Log(p)
		score := logprob
		if c.token == d.cfg.EndToken {
			if d.cfg.LengthNormalization > 0 {
				length := float64(len(h.Tokens) + 1)
				score = logprob / math.Pow(length, d.cfg.LengthNormalization)
			}
			if err := completed.Push(h.extend(c.token, logprob, score, pred.State)); err != nil {
				return err
			}
			continue
		}
		if err := frontier.Push(h.extend(c.token, logprob, score, pred.State)); err != nil {
			return err
		}
	}
	return nil
}

type candidate struct {
	token int32
	prob  float32
}

// topCandidates returns the k most probable tokens, most probable first.
// Ties keep the lower token index. This is an O(V*K) insertion pass,
// fine for the small k a beam uses.
func topCandidates(probs []float32, k int) []candidate {
	if k > len(probs) {
		k = len(probs)
	}
	top := make([]candidate, 0, k+1)
	for i, p := range probs {
		pos := len(top)
		for pos > 0 && top[pos-1].prob < p {
			pos--
		}
		if pos >= k {
			continue
		}
		top = append(top, candidate{})
		copy(top[pos+1:], top[pos:])
		top[pos] = candidate{token: int32(i), prob: p}
		if len(top) > k {
			top = top[:k]
		}
	}
	return top
}
