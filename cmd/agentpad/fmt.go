package main

import (
	"fmt"

	udiff "github.com/aymanbagabas/go-udiff"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentpad/agentpad/pkg/frontmatter"
	"github.com/agentpad/agentpad/pkg/presenter"
	"github.com/agentpad/agentpad/pkg/store"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Canonicalize document frontmatter",
	Long: `Re-encodes each document so the frontmatter keys are sorted and the
YAML formatting is deterministic. By default the canonical text is printed
to stdout; use --write to rewrite the files in place or --diff to show
what would change.

File paths are relative to the workspace root.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		write, _ := cmd.Flags().GetBool("write")
		showDiff, _ := cmd.Flags().GetBool("diff")

		ws, err := store.Open(viper.GetString("workspace"))
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		for _, path := range args {
			text, err := ws.Load(ctx, path)
			if err != nil {
				return err
			}

			doc, err := frontmatter.Decode(text)
			if err != nil {
				return err
			}
			canonical, err := frontmatter.Encode(doc)
			if err != nil {
				return err
			}

			if canonical == text {
				if !write && !showDiff {
					fmt.Print(canonical)
				}
				continue
			}

			switch {
			case showDiff:
				fmt.Print(udiff.Unified(path, path+" (formatted)", text, canonical))
			case write:
				if err := ws.Save(ctx, path, canonical); err != nil {
					return err
				}
				presenter.Success(fmt.Sprintf("Formatted %s", path))
			default:
				fmt.Print(canonical)
			}
		}
		return nil
	},
}

func init() {
	fmtCmd.Flags().Bool("write", false, "Rewrite files in place")
	fmtCmd.Flags().Bool("diff", false, "Print a unified diff instead of the formatted text")
}
