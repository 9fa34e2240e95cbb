package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cyrup-ai/kodegen-simd/pkg/constrain"
)

func validateCmd() *cli.Command {
	var (
		schemaPath string
		docPath    string
		quiet      bool
	)

	return &cli.Command{
		Name:  "validate",
		Usage: "Replay a JSON document against a constraint and report the outcome",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "schema",
				Aliases:     []string{"s"},
				Usage:       "path to a JSON Schema (omit for syntax-only checking)",
				Destination: &schemaPath,
			},
			&cli.StringFlag{
				Name:        "doc",
				Aliases:     []string{"d"},
				Usage:       "path to the document (default stdin)",
				Destination: &docPath,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "suppress output, report via exit code only",
				Destination: &quiet,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var con *constrain.Constraint
			if schemaPath != "" {
				schemaText, err := os.ReadFile(schemaPath)
				if err != nil {
					return err
				}
				con, err = constrain.ForSchema(schemaText, nil)
				if err != nil {
					return fmt.Errorf("schema: %w", err)
				}
			} else {
				con = constrain.NewSyntax(nil)
			}

			doc, err := readDocument(docPath)
			if err != nil {
				return err
			}

			offset, advErr := con.AdvanceText(string(doc))
			switch {
			case advErr != nil:
				if !quiet {
					fmt.Printf("rejected at byte %d: %v\n", offset, advErr)
				}
				return cli.Exit("", 1)
			case con.State() == constrain.StateAccepted:
				if !quiet {
					fmt.Println("accepted")
				}
				return nil
			default:
				if !quiet {
					msg := "incomplete document"
					if forced, ok := con.ForcedToken(); ok {
						msg += fmt.Sprintf(", next: %s", forced)
					}
					fmt.Println(msg)
				}
				return cli.Exit("", 1)
			}
		},
	}
}

func readDocument(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
