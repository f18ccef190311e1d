package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"skl2pmml/internal/catalog"
)

var historyLimit int

// historyCmd lists recorded conversions
var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show recorded conversions",
	Long: `Lists the latest conversions recorded in the catalog, newest first, or
the full record of a single run when an id is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	c, _ := settings()
	if c.Catalog.Path == "" {
		return fmt.Errorf("no catalog path configured")
	}
	store, err := catalog.NewStore(c.Catalog.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if len(args) == 1 {
		run, err := store.Get(args[0])
		if err != nil {
			return err
		}
		renderRun(w, run)
		return nil
	}

	runs, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}
	stats, err := store.Stats()
	if err != nil {
		return err
	}
	renderHistory(w, runs, stats)
	return nil
}

func renderHistory(w io.Writer, runs []catalog.Conversion, stats map[catalog.Status]int) {
	t := newTable("Conversions", "id", "input", "status", "model", "when")
	for _, r := range runs {
		status := successStyle.Render(string(r.Status))
		if r.Status == catalog.StatusFailed {
			status = errorStyle.Render(string(r.Status) + " (" + r.ErrorKind + ")")
		}
		model := r.Algorithm
		if r.Function != "" {
			model += " " + r.Function
		}
		t.addRow(shortID(r.ID), r.Input, status, strings.TrimSpace(model), r.CreatedAt.Local().Format(time.DateTime))
	}
	fmt.Fprint(w, t)
	fmt.Fprintf(w, "%d ok, %d failed\n", stats[catalog.StatusOK], stats[catalog.StatusFailed])
}

func renderRun(w io.Writer, r *catalog.Conversion) {
	t := newTable("Conversion "+r.ID, "property", "value")
	t.addRow("input", r.Input)
	t.addRow("digest", r.Digest)
	t.addRow("status", string(r.Status))
	if r.Status == catalog.StatusFailed {
		t.addRow("error kind", r.ErrorKind)
		t.addRow("error", r.Error)
	} else {
		t.addRow("model", r.ModelName)
		t.addRow("algorithm", r.Algorithm)
		t.addRow("function", r.Function)
		t.addRow("fields", strings.Join(r.Fields, ", "))
	}
	t.addRow("duration", r.Duration.String())
	t.addRow("when", r.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprint(w, t)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
