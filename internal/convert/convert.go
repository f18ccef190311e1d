// Package convert drives one conversion: it builds the step graph from a
// decoded object graph, lowers it through an Encoder, prunes unused fields via
// the lineage closure, and assembles the PMML document.
package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"skl2pmml/internal/config"
	"skl2pmml/internal/encoder"
	"skl2pmml/internal/lineage"
	"skl2pmml/internal/logging"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// ErrNoRoot is returned when the input document is not an object.
var ErrNoRoot = errors.New("input has no root object")

// Converter lowers fitted pipelines into PMML documents. It is safe for
// concurrent use; every conversion gets its own Encoder.
type Converter struct {
	cfg      *config.Config
	registry *step.Registry
	logger   *zap.Logger
}

// Result is the outcome of one conversion.
type Result struct {
	// RunID identifies the run in logs and the catalog. It never enters the document.
	RunID    string
	Document *pmml.Document
	Encoding *step.Encoding

	// Fields is the final field catalogue, pruned fields included.
	Fields []encoder.Field

	// Usage is nil when pruning is disabled.
	Usage    *lineage.Usage
	Duration time.Duration
}

// New creates a Converter. A nil registry uses the default registry and a nil
// logger discards output.
func New(cfg *config.Config, registry *step.Registry, logger *zap.Logger) *Converter {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if registry == nil {
		registry = step.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{cfg: cfg, registry: registry, logger: logger}
}

// Convert lowers the root object of a decoded document.
func (c *Converter) Convert(ctx context.Context, root *node.Node) (*Result, error) {
	if root == nil {
		return nil, ErrNoRoot
	}
	start := time.Now()
	runID := uuid.NewString()
	log := c.logger.With(zap.String("run", runID), zap.String("root", root.ClassName()))
	log.Debug("conversion started")

	s, err := c.registry.Build(root)
	if err != nil {
		log.Debug("build failed", zap.Error(err))
		return nil, err
	}

	res, err := c.convertStep(ctx, s)
	if err != nil {
		log.Debug("conversion failed", zap.Error(err))
		return nil, err
	}
	res.RunID = runID
	res.Duration = time.Since(start)

	base := res.Encoding.Model.Base()
	log.Info("conversion finished",
		zap.String("function", string(base.FunctionName)),
		zap.Int("data_fields", res.Document.DataDictionary.NumberOfFields),
		zap.Duration("duration", res.Duration))
	return res, nil
}

func (c *Converter) convertStep(ctx context.Context, s step.Step) (*Result, error) {
	enc := encoder.New().WithContext(ctx)
	enc.SetOptions(encoder.Options{NegateComparisons: c.cfg.Conversion.NegateComparisons})

	var (
		out *step.Encoding
		err error
	)
	if root, ok := s.(step.Encodable); ok {
		out, err = root.Encode(enc)
	} else {
		out, err = step.EncodeRoot(s, step.RootFields{}, enc)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header, err := c.header(s)
	if err != nil {
		return nil, err
	}

	fields := enc.Fields()
	var usage *lineage.Usage
	if c.cfg.Conversion.PruneUnusedFields {
		if usage, err = lineage.Analyze(ctx, out.Model, fields); err != nil {
			return nil, err
		}
		logging.ConvertDebug("Lineage keeps %d of %d field(s)", len(usage.Fields()), len(fields))
	}

	doc, err := Assemble(ctx, Assembly{
		Header:      header,
		Encoding:    out,
		Fields:      fields,
		Usage:       usage,
		Importances: c.cfg.Conversion.FeatureImportances,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Document: doc, Encoding: out, Fields: fields, Usage: usage}, nil
}

// header fills the configured application and annotations, then overlays the
// annotations the root step carries.
func (c *Converter) header(s step.Step) (pmml.Header, error) {
	h := pmml.Header{
		Copyright:   c.cfg.Header.Copyright,
		Description: c.cfg.Header.Description,
		Application: pmml.Application{
			Name:    c.cfg.Header.ApplicationName,
			Version: c.cfg.Header.ApplicationVersion,
		},
	}
	hh, ok := s.(step.HasHeader)
	if !ok {
		return h, nil
	}
	own, ok, err := hh.Header()
	if err != nil {
		return pmml.Header{}, fmt.Errorf("header: %w", err)
	}
	if !ok {
		return h, nil
	}
	if own.Copyright != "" {
		h.Copyright = own.Copyright
	}
	if own.Description != "" {
		h.Description = own.Description
	}
	h.ModelVersion = own.ModelVersion
	return h, nil
}
