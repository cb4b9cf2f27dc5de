package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/imcap/internal/caption"
	"github.com/samcharles93/imcap/internal/model"
	"github.com/samcharles93/imcap/internal/vocab"
)

func captionCmd() *cli.Command {
	var (
		imagePath  string
		beamWidth  int64
		maxSteps   int64
		lengthNorm float64
		limit      int64
		jsonOut    bool
	)

	return &cli.Command{
		Name:  "caption",
		Usage: "Decode captions for an image file",
		Flags: append(append(commonModelFlags(), commonLogFlags()...),
			&cli.StringFlag{
				Name:        "image",
				Aliases:     []string{"i"},
				Usage:       "path to the image file",
				Required:    true,
				Destination: &imagePath,
			},
			&cli.Int64Flag{
				Name:        "beam-width",
				Aliases:     []string{"b"},
				Usage:       "number of hypotheses kept per step",
				Value:       3,
				Destination: &beamWidth,
			},
			&cli.Int64Flag{
				Name:        "max-steps",
				Usage:       "maximum caption length in tokens",
				Value:       20,
				Destination: &maxSteps,
			},
			&cli.Float64Flag{
				Name:        "length-normalization",
				Usage:       "length normalization exponent (0 disables)",
				Destination: &lengthNorm,
			},
			&cli.Int64Flag{
				Name:        "limit",
				Usage:       "maximum number of captions to print (0 = all)",
				Destination: &limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit captions as JSON",
				Destination: &jsonOut,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyDecodeConfig(cmd, cfg, &beamWidth, &maxSteps, &lengthNorm)

			c, err := buildCaptioner()
			if err != nil {
				return err
			}
			image, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			caps, err := c.Caption(ctx, image, caption.Options{
				BeamWidth:           int(beamWidth),
				MaxSteps:            int(maxSteps),
				LengthNormalization: lengthNorm,
				Limit:               int(limit),
			})
			if err != nil {
				return err
			}

			if jsonOut {
				out, err := json.MarshalIndent(caps, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			for _, cc := range caps {
				fmt.Printf("%8.6f  %s\n", cc.Confidence, cc.Sentence)
			}
			return nil
		},
	}
}

// buildCaptioner loads the checkpoint and vocabulary named by the global
// flags.
func buildCaptioner() (*caption.Captioner, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("missing --model")
	}
	if vocabPath == "" {
		return nil, fmt.Errorf("missing --vocab")
	}
	log := newLogger()

	v, err := vocab.Load(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	m, err := model.LoadTableModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if m.VocabSize() != v.Len() {
		return nil, fmt.Errorf("model covers %d tokens but vocabulary holds %d", m.VocabSize(), v.Len())
	}
	log.Debug("loaded captioner", "vocab_size", v.Len(), "model", modelPath)
	return caption.New(m, v, log), nil
}
