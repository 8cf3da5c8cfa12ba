package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentpad/agentpad/pkg/frontmatter"
	"github.com/agentpad/agentpad/pkg/presenter"
	"github.com/agentpad/agentpad/pkg/schema"
	"github.com/agentpad/agentpad/pkg/store"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate document frontmatter against its schema",
	Long: `Validates each document's frontmatter against the schema for its kind,
which is derived from its path (skills/, agents/, commands/). Without
arguments every managed document in the workspace is validated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := store.Open(viper.GetString("workspace"))
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		paths := args
		if len(paths) == 0 {
			refs, err := ws.List(ctx)
			if err != nil {
				return err
			}
			for _, ref := range refs {
				paths = append(paths, ref.Path)
			}
		}

		failed := 0
		for _, path := range paths {
			text, err := ws.Load(ctx, path)
			if err != nil {
				return err
			}
			doc, err := frontmatter.Decode(text)
			if err != nil {
				presenter.Error(err, fmt.Sprintf("%s: malformed document", path))
				failed++
				continue
			}

			kind := schema.KindForPath(path)
			if kind == schema.KindUnknown {
				presenter.Warning(fmt.Sprintf("%s: not a managed document, skipping", path))
				continue
			}

			if err := schema.ValidateMeta(kind, doc.Meta); err != nil {
				presenter.Error(err, fmt.Sprintf("%s: invalid %s", path, kind))
				failed++
				continue
			}
			presenter.Success(fmt.Sprintf("%s: valid %s", path, kind))
		}

		if failed > 0 {
			return errors.Errorf("%d document(s) failed validation", failed)
		}
		return nil
	},
}
