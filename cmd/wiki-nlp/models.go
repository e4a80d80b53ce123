// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wiki-nlp/internal/annotate"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List annotation models",
	Long: `Models lists the built-in annotation models and the lemma dictionaries
cached in model.cache_dir. Use "models pull" to download a dictionary ahead
of time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Built-in:")
		for _, name := range annotate.Builtins() {
			fmt.Fprintf(out, "  %s\n", name)
		}

		entries, err := os.ReadDir(cfg.Model.CacheDir)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading model cache: %w", err)
		}
		fmt.Fprintf(out, "Cached (%s):\n", cfg.Model.CacheDir)
		n := 0
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			fmt.Fprintf(out, "  %s\n", e.Name())
			n++
		}
		if n == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		return nil
	},
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull <name>",
	Short: "Download a lemma dictionary into the model cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path, err := newModelManager(cfg).Ensure(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		// Loading validates the dictionary format.
		if _, err := (annotate.Factory{}).Load(args[0], path); err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is built in\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ready at %s\n", args[0], path)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsPullCmd)
	rootCmd.AddCommand(modelsCmd)
}
