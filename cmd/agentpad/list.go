package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentpad/agentpad/pkg/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the managed documents in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := store.Open(viper.GetString("workspace"))
		if err != nil {
			return err
		}

		refs, err := ws.List(cmd.Context())
		if err != nil {
			return err
		}

		kindColor := color.New(color.FgCyan)
		for _, ref := range refs {
			fmt.Printf("%s  %s\n", kindColor.Sprintf("%-8s", ref.Kind), ref.Path)
		}
		return nil
	},
}
