// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wiki-nlp CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/wiki-nlp/internal/annotate"
	"github.com/pdiddy/wiki-nlp/internal/config"
	"github.com/pdiddy/wiki-nlp/internal/logging"
	"github.com/pdiddy/wiki-nlp/internal/model"
	"github.com/pdiddy/wiki-nlp/internal/pipeline"
	"github.com/pdiddy/wiki-nlp/internal/secrets"
	"github.com/pdiddy/wiki-nlp/internal/store"
	"github.com/pdiddy/wiki-nlp/internal/wikipedia"
	"github.com/pdiddy/wiki-nlp/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API tokens loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd searches for a word and prints the annotated article.
var rootCmd = &cobra.Command{
	Use:   "wiki-nlp <word>",
	Short: "Annotate a Wikipedia article with lemmas and parts of speech",
	Long: `wiki-nlp searches Wikipedia for a word, pulls the plain text of the first
matching article, and prints every token with its lemma and part of speech.

Long tables are truncated; use --all to print every row and --save to write
the table to wiki_nlp_<word>.csv in the output directory.

To look up a word that is also a subcommand name, put it after --:
  wiki-nlp -- history`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runRoot,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Install(os.Stderr, viper.GetString("log.level"))

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			slog.Info("loaded secrets", "keys", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./wiki-nlp.yaml or ~/.config/wiki-nlp/wiki-nlp.yaml)")
	pf.String("db", "", "SQLite run history database (disabled when empty)")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	f := rootCmd.Flags()
	f.BoolP("all", "a", false, "print every row of the table")
	f.BoolP("save", "s", false, "save the table to wiki_nlp_<word>.<format>")
	f.String("lang", "", "Wikipedia language edition (default en)")
	f.String("model", "", "annotation model (default builtin:<lang>)")
	f.String("format", "", "save format: csv, json or yaml (default csv)")
	f.Int("max-rows", 0, "rows above which the table is truncated (default 60)")
	f.String("output-dir", "", "directory for saved tables (default .)")

	bindFlags(pf, map[string]string{
		"db":        "store.path",
		"log-level": "log.level",
	})
	bindFlags(f, map[string]string{
		"lang":       "source.language",
		"model":      "model.name",
		"format":     "output.format",
		"max-rows":   "display.max_rows",
		"output-dir": "output.dir",
	})
}

// bindFlags maps flag names to config keys so a set flag overrides the
// config file and environment.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	config.Configure(viper.GetViper(), cfgFile)

	used, err := config.Read(viper.GetViper())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
}

// loadConfig decodes and validates the merged configuration.
func loadConfig() (types.PipelineConfig, error) {
	return config.Load(viper.GetViper())
}

// openHistory opens the run history database when one is configured. The
// returned store is nil when history is disabled.
func openHistory(cfg types.PipelineConfig) (*store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, nil
	}
	return store.Open(cfg.Store.Path)
}

func newModelManager(cfg types.PipelineConfig) *model.Manager {
	client := &http.Client{Timeout: cfg.HTTP.Timeout}
	return model.NewManager(client, cfg.Model, cfg.HTTP, loadedSecrets.Get(secrets.ModelDownloadToken, ""))
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	term := args[0]
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Arbitrary word: %s\n", term)

	client := wikipedia.NewFromConfig(cfg.HTTP, cfg.Source, loadedSecrets.Get(secrets.WikimediaToken, ""))

	var opts []pipeline.RunnerOption
	hist, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if hist != nil {
		defer hist.Close()
		opts = append(opts, pipeline.WithRecorder(hist))
	}

	runner := pipeline.NewRunner(client, newModelManager(cfg), annotate.Factory{}, out, opts...)

	showAll, _ := cmd.Flags().GetBool("all")
	save, _ := cmd.Flags().GetBool("save")
	_, err = runner.Run(cmd.Context(), term, pipeline.Options{
		ShowAll:   showAll,
		Save:      save,
		Format:    cfg.Output.Format,
		OutputDir: cfg.Output.Dir,
		MaxRows:   cfg.Display.MaxRows,
		MinRows:   cfg.Display.MinRows,
		Model:     cfg.Model.Name,
		Language:  cfg.Source.Language,
	})
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
