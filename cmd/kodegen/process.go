package main

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/cyrup-ai/kodegen-simd/pkg/logits"
)

// processInput is the JSON document accepted on stdin or via --input.
type processInput struct {
	Logits  []float64 `json:"logits"`
	History []int32   `json:"history,omitempty"`
}

func processCmd() *cli.Command {
	var (
		inputPath  string
		temp       float64
		topK       int64
		topP       float64
		repetition float64
		frequency  float64
		presence   float64
		seed       int64
		sample     bool
	)

	return &cli.Command{
		Name:  "process",
		Usage: "Run the logits pipeline over a buffer read from a JSON file or stdin",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "path to JSON input (default stdin)",
				Destination: &inputPath,
			},
			&cli.Float64Flag{
				Name:        "temp",
				Aliases:     []string{"temperature", "t"},
				Usage:       "sampling temperature",
				Value:       1.0,
				Destination: &temp,
			},
			&cli.Int64Flag{
				Name:        "top-k",
				Usage:       "keep only the k most likely tokens (0 = disabled)",
				Destination: &topK,
			},
			&cli.Float64Flag{
				Name:        "top-p",
				Usage:       "nucleus mass threshold (0 = disabled)",
				Destination: &topP,
			},
			&cli.Float64Flag{
				Name:        "repetition-penalty",
				Usage:       "weight subtracted from tokens in the history",
				Destination: &repetition,
			},
			&cli.Float64Flag{
				Name:        "frequency-penalty",
				Usage:       "weight subtracted per occurrence in the history",
				Destination: &frequency,
			},
			&cli.Float64Flag{
				Name:        "presence-penalty",
				Usage:       "weight subtracted once for tokens in the history",
				Destination: &presence,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "sampler seed",
				Value:       42,
				Destination: &seed,
			},
			&cli.BoolFlag{
				Name:        "sample",
				Usage:       "draw a token instead of printing the distribution",
				Destination: &sample,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyProcessConfig(cmd, loadConfig(),
				&temp, &topP, &topK, &repetition, &frequency, &presence, &seed)

			in, err := readProcessInput(inputPath)
			if err != nil {
				return err
			}

			opts := []logits.Option{logits.WithTemperature(temp)}
			if topK > 0 {
				opts = append(opts, logits.WithTopK(int(topK)))
			}
			if topP > 0 {
				opts = append(opts, logits.WithTopP(topP))
			}
			if repetition != 0 {
				opts = append(opts, logits.WithRepetitionPenalty(repetition))
			}
			if frequency != 0 {
				opts = append(opts, logits.WithFrequencyPenalty(frequency))
			}
			if presence != 0 {
				opts = append(opts, logits.WithPresencePenalty(presence))
			}

			lctx := logits.NewContext(len(in.Logits), opts...)
			for _, id := range in.History {
				lctx.Observe(id)
			}

			if err := logits.Process(in.Logits, lctx, nil); err != nil {
				return fmt.Errorf("process: %w", err)
			}

			if sample {
				s := logits.NewSampler(seed, temp)
				token, err := s.Sample(in.Logits)
				if err != nil {
					return fmt.Errorf("sample: %w", err)
				}
				fmt.Println(token)
				return nil
			}

			best, err := logits.Argmax(in.Logits)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			return enc.Encode(map[string]any{
				"probs":  in.Logits,
				"argmax": best,
			})
		},
	}
}

func readProcessInput(path string) (processInput, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return processInput{}, err
		}
		defer f.Close()
		r = f
	}
	var in processInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return processInput{}, fmt.Errorf("decode input: %w", err)
	}
	if len(in.Logits) == 0 {
		return processInput{}, fmt.Errorf("input has no logits")
	}
	return in, nil
}
