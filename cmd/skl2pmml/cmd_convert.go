package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"skl2pmml/internal/catalog"
	"skl2pmml/internal/config"
	"skl2pmml/internal/convert"
	"skl2pmml/internal/errkind"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
)

var (
	outputDir      string
	convertTimeout time.Duration
	watchInputs    bool
)

// convertCmd converts one or more pipeline documents
var convertCmd = &cobra.Command{
	Use:   "convert <input>...",
	Short: "Convert pipeline documents to PMML",
	Long: `Converts every input document into a .pmml file next to it, or into
--output-dir when given. Inputs are converted concurrently, up to
batch.max_parallel at a time; one failing input does not stop the others.

When the catalog is enabled every run is recorded in its SQLite database.
With --watch the inputs are converted again whenever they change, until
the process is interrupted.

Examples:
  skl2pmml convert model.yaml
  skl2pmml convert -o build/ models/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the .pmml files (default: next to each input)")
	convertCmd.Flags().DurationVar(&convertTimeout, "timeout", 5*time.Minute, "Timeout for the whole batch")
	convertCmd.Flags().BoolVarP(&watchInputs, "watch", "w", false, "Convert the inputs again when they change")
}

// outcome is the result of converting one input.
type outcome struct {
	input    string
	output   string
	digest   string
	result   *convert.Result
	err      error
	duration time.Duration
}

func runConvert(cmd *cobra.Command, args []string) error {
	c, log := settings()

	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := openCatalog(c)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	conv := convert.New(c, nil, log)
	one := func(ctx context.Context, input string) outcome {
		o := convertFile(ctx, conv, input, outputDir)
		if o.err != nil {
			log.Warn("Conversion failed", zap.String("input", input), zap.Error(o.err))
		}
		if store != nil {
			if err := store.Record(conversionRecord(o)); err != nil {
				log.Warn("Failed to record conversion", zap.String("input", input), zap.Error(err))
			}
		}
		return o
	}

	batchCtx := ctx
	if convertTimeout > 0 {
		var stop context.CancelFunc
		batchCtx, stop = context.WithTimeout(ctx, convertTimeout)
		defer stop()
	}
	outcomes := make([]outcome, len(args))
	var g errgroup.Group
	g.SetLimit(c.Batch.MaxParallel)
	for i, input := range args {
		g.Go(func() error {
			outcomes[i] = one(batchCtx, input)
			return nil
		})
	}
	_ = g.Wait()

	w := cmd.OutOrStdout()
	err = report(w, outcomes)
	if !watchInputs {
		return err
	}

	watcher, werr := newWatcher(args, 300*time.Millisecond, func(ctx context.Context, input string) {
		_ = report(w, []outcome{one(ctx, input)})
	})
	if werr != nil {
		return werr
	}
	fmt.Fprintln(w, mutedStyle.Render("Watching for changes; press Ctrl+C to stop."))
	return watcher.run(ctx)
}

// openCatalog opens the history store, or returns nil when the catalog is disabled.
func openCatalog(c *config.Config) (*catalog.Store, error) {
	if !c.IsCatalogEnabled() {
		return nil, nil
	}
	return catalog.NewStore(c.Catalog.Path)
}

// convertFile reads, converts and writes one input.
func convertFile(ctx context.Context, conv *convert.Converter, input, dir string) outcome {
	start := time.Now()
	o := outcome{input: input}

	data, err := os.ReadFile(input)
	if err != nil {
		o.err = err
		return o
	}
	sum := sha256.Sum256(data)
	o.digest = hex.EncodeToString(sum[:])

	root, err := node.DecodeNode(bytes.NewReader(data))
	if err != nil {
		o.err = err
		return o
	}
	if o.result, o.err = conv.Convert(ctx, root); o.err != nil {
		o.duration = time.Since(start)
		return o
	}

	o.output = outputPath(input, dir)
	if err := writeDocument(o.output, o.result.Document); err != nil {
		o.err = err
	}
	o.duration = time.Since(start)
	return o
}

// outputPath replaces the input extension with .pmml, optionally moving the file into dir.
func outputPath(input, dir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".pmml"
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}

// writeDocument writes doc through a temporary file so a failed write never
// leaves a truncated document behind.
func writeDocument(path string, doc *pmml.Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := pmml.Encode(tmp, doc); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// conversionRecord summarizes an outcome for the catalog.
func conversionRecord(o outcome) *catalog.Conversion {
	c := &catalog.Conversion{
		Input:    o.input,
		Digest:   o.digest,
		Status:   catalog.StatusOK,
		Duration: o.duration,
	}
	if o.err != nil {
		c.ID = uuid.NewString()
		c.Status = catalog.StatusFailed
		c.ErrorKind = errkind.Classify(o.err).String()
		c.Error = o.err.Error()
		return c
	}

	c.ID = o.result.RunID
	base := o.result.Document.Model.Base()
	c.ModelName = base.ModelName
	c.Algorithm = base.AlgorithmName
	c.Function = string(base.FunctionName)
	for _, f := range o.result.Document.DataDictionary.Fields {
		c.Fields = append(c.Fields, f.Name)
	}
	return c
}

// report prints one line per input and returns the first failure in input order.
func report(w io.Writer, outcomes []outcome) error {
	var first error
	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			if first == nil {
				first = fmt.Errorf("%s: %w", o.input, o.err)
			}
			fmt.Fprintf(w, "%s %s: %v\n", errorStyle.Render("✗"), o.input, o.err)
			continue
		}
		fmt.Fprintf(w, "%s %s -> %s %s\n", successStyle.Render("✓"), o.input, o.output,
			mutedStyle.Render(fmt.Sprintf("(%d fields, %s)", o.result.Document.DataDictionary.NumberOfFields, o.duration.Round(time.Millisecond))))
	}
	if failed > 1 {
		return fmt.Errorf("%d of %d conversions failed; first: %w", failed, len(outcomes), first)
	}
	return first
}
