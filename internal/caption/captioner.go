// Package caption turns beam-search decoder output into ranked text
// captions for an image.
package caption

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/samcharles93/imcap/internal/beam"
	"github.com/samcharles93/imcap/internal/logger"
	"github.com/samcharles93/imcap/internal/model"
	"github.com/samcharles93/imcap/internal/vocab"
)

// Options selects decode parameters for a single caption request. Zero
// values fall back to the decoder defaults.
type Options struct {
	BeamWidth           int
	MaxSteps            int
	LengthNormalization float64
	// Limit caps the number of captions returned; 0 means all.
	Limit int
}

// Caption is one ranked caption. Confidence is exp(Logprob).
type Caption struct {
	Sentence   string
	Logprob    float64
	Confidence float64
}

// Captioner binds a step model and a vocabulary. Each Caption call builds
// its own decoder session, so concurrent calls only contend on the model.
type Captioner struct {
	model model.StepModel
	vocab *vocab.Vocabulary
	log   logger.Logger
}

func New(m model.StepModel, v *vocab.Vocabulary, log logger.Logger) *Captioner {
	if log == nil {
		log = logger.Default()
	}
	return &Captioner{model: m, vocab: v, log: log}
}

// Caption decodes image into up to Limit ranked captions, best first.
func (c *Captioner) Caption(ctx context.Context, image []byte, opts Options) ([]Caption, error) {
	dec, err := beam.NewDecoder(c.model, beam.Config{
		BeamWidth:           opts.BeamWidth,
		MaxSteps:            opts.MaxSteps,
		LengthNormalization: opts.LengthNormalization,
		StartToken:          c.vocab.StartID(),
		EndToken:            c.vocab.EndID(),
	})
	if err != nil {
		return nil, err
	}

	results, err := dec.Decode(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("decode caption: %w", err)
	}

	out := make([]Caption, 0, len(results))
	for _, r := range results {
		out = append(out, Caption{
			Sentence:   c.sentence(r.Tokens),
			Logprob:    r.Logprob,
			Confidence: math.Exp(r.Logprob),
		})
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}

	c.log.Debug("decoded captions",
		"count", len(out),
		"beam_width", opts.BeamWidth,
		"max_steps", opts.MaxSteps,
	)
	return out, nil
}

// sentence strips the start/end sentinels and joins the remaining words.
// Fallback (partial) sequences carry no end token; completed ones end with
// exactly one.
func (c *Captioner) sentence(tokens []int32) string {
	if len(tokens) > 0 && tokens[0] == c.vocab.StartID() {
		tokens = tokens[1:]
	}
	if len(tokens) > 0 && tokens[len(tokens)-1] == c.vocab.EndID() {
		tokens = tokens[:len(tokens)-1]
	}
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = c.vocab.IDToToken(tok)
	}
	return strings.Join(words, " ")
}
