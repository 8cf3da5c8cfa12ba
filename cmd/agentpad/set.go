package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/agentpad/agentpad/pkg/docsync"
	"github.com/agentpad/agentpad/pkg/frontmatter"
	"github.com/agentpad/agentpad/pkg/presenter"
	"github.com/agentpad/agentpad/pkg/store"
)

var setCmd = &cobra.Command{
	Use:   "set <file> <key=value>...",
	Short: "Update document frontmatter",
	Long: `Updates frontmatter keys and rewrites the document. Values are parsed
as YAML scalars, so numbers and booleans keep their types. Setting a key
to null removes it.

  agentpad set agents/reviewer.md model=opus
  agentpad set skills/deploy/SKILL.md version=1.2 license=null`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}

		ws, err := store.Open(viper.GetString("workspace"))
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		path := args[0]
		text, err := ws.Load(ctx, path)
		if err != nil {
			return err
		}

		ctrl, err := docsync.New[*frontmatter.Document](frontmatter.Codec{}, text)
		if err != nil {
			return err
		}

		next := ctrl.State().Clone()
		next.Update(patch)
		if err := ctrl.ApplyLocalEdit(next); err != nil {
			return err
		}

		if err := ws.Save(ctx, path, ctrl.Text()); err != nil {
			return err
		}
		presenter.Success("Updated " + path)
		return nil
	},
}

// parseAssignments turns key=value arguments into a frontmatter patch.
// Values are parsed as YAML scalars; an explicit null deletes the key.
func parseAssignments(args []string) (map[string]any, error) {
	patch := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("invalid assignment %q, expected key=value", arg)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, errors.Wrapf(err, "invalid value for %q", key)
		}
		patch[key] = value
	}
	return patch, nil
}
