package main

import (
	"context"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/cyrup-ai/kodegen-simd/internal/cpu"
	"github.com/cyrup-ai/kodegen-simd/internal/kernels"
)

type featuresOutput struct {
	Arch        string `json:"arch"`
	Level       string `json:"level"`
	VectorWidth int    `json:"vector_width"`
	Kernel      string `json:"kernel"`
	ForceScalar bool   `json:"force_scalar"`

	Features map[string]bool `json:"features"`
}

func featuresCmd() *cli.Command {
	return &cli.Command{
		Name:  "features",
		Usage: "Print the detected CPU capabilities and selected kernel as JSON",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f := cpu.Detect()
			out := featuresOutput{
				Arch:        f.Arch,
				Level:       f.Best.String(),
				VectorWidth: f.Best.Width(),
				Kernel:      kernels.ActiveName(),
				ForceScalar: f.ForceScalar,
				Features: map[string]bool{
					"AVX2":   f.HasAVX2,
					"AVX512": f.HasAVX512,
					"NEON":   f.HasNEON,
				},
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
