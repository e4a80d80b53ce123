// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wiki-nlp/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded runs or show one run's most frequent lemmas",
	Long: `History reads the run history database set by --db or store.path.
Without arguments it lists the most recent runs. With a run ID it shows the
run and its most frequent lemmas, optionally filtered by --pos.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	hist, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if hist == nil {
		return errors.New("run history is disabled: set --db or store.path")
	}
	defer hist.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		runs, err := hist.Runs(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, runs)
		}
		formatRuns(out, runs)
		return nil
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}
	run, err := hist.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	pos, _ := cmd.Flags().GetString("pos")
	counts, err := hist.LemmaCounts(cmd.Context(), id, strings.ToUpper(pos), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, struct {
			Run    store.Run          `json:"run"`
			Lemmas []store.LemmaCount `json:"lemmas"`
		}{run, counts})
	}
	formatRun(out, run, counts)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-20s  %-20s  %-40s  %6s  %s\n",
		"ID", "Date", "Term", "Title", "Tokens", "Saved")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(w, "%-5d  %-20s  %-20s  %-40s  %6d  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.Term, 20), truncate(r.Title, 40), r.TokenCount, r.SavedPath)
	}
}

func formatRun(w io.Writer, r store.Run, counts []store.LemmaCount) {
	fmt.Fprintf(w, "Run %d: %q -> %s\n", r.ID, r.Term, r.Title)
	fmt.Fprintf(w, "  URL:     %s\n", r.URL)
	fmt.Fprintf(w, "  Model:   %s (%s)\n", r.Model, r.Language)
	fmt.Fprintf(w, "  Tokens:  %d\n", r.TokenCount)
	if r.SavedPath != "" {
		fmt.Fprintf(w, "  Saved:   %s\n", r.SavedPath)
	}
	if len(counts) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-30s  %s\n", "Lemma", "Count")
	for _, c := range counts {
		fmt.Fprintf(w, "%-30s  %d\n", truncate(c.Lemma, 30), c.Count)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs or lemmas to list")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.Flags().String("pos", "", "only count lemmas with this part of speech, e.g. NOUN")

	rootCmd.AddCommand(historyCmd)
}
