package main

import (
	"fmt"

	"github.com/spf13/cobra"

	contentstatic "outpost/internal/adapter/content/static"
)

func newContentCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect content tables",
	}
	var dir string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check content against the schema and cross references",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root := dir
			if root == "" {
				root = opts.cfg.Content.Dir
			}
			p := contentstatic.Provider{Root: root}
			cat, err := loadCatalog(cmd.Context(), p)
			if err != nil {
				return err
			}
			t, err := p.Tables(cmd.Context())
			if err != nil {
				return err
			}
			src := root
			if src == "" {
				src = "embedded"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "content %s (%s): %d resources, %d actions, %d buildings, %d incidents, %d perks\n",
				cat.Settings().Version, src, len(t.Resources), len(t.Actions), len(t.Buildings), len(t.Incidents), len(t.Perks))
			return nil
		},
	}
	validate.Flags().StringVar(&dir, "dir", "", "content directory (defaults to the configured one)")
	cmd.AddCommand(validate)
	return cmd
}
