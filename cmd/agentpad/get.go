package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/agentpad/agentpad/pkg/frontmatter"
	"github.com/agentpad/agentpad/pkg/store"
)

var getCmd = &cobra.Command{
	Use:   "get <file> [key]",
	Short: "Print document frontmatter",
	Long: `Prints the frontmatter of a document as YAML. With a key argument only
that value is printed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := store.Open(viper.GetString("workspace"))
		if err != nil {
			return err
		}

		text, err := ws.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		doc, err := frontmatter.Decode(text)
		if err != nil {
			return err
		}

		var value any = doc.Meta
		if len(args) == 2 {
			v, ok := doc.Meta[args[1]]
			if !ok {
				return errors.Errorf("key %q not found in %s", args[1], args[0])
			}
			value = v
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			return errors.Wrap(err, "failed to render value")
		}
		fmt.Print(string(out))
		return nil
	},
}
