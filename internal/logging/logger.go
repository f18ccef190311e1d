// Package logging provides config-driven categorized logging for skl2pmml.
// Category loggers are backed by a shared zap root logger.
// Debug and Info output is emitted only when debug_mode is on and the category is enabled;
// Warn and Error always reach the root logger.
package logging

import (
	"fmt"
	"sync"
	"time"

	"skl2pmml/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem
type Category string

const (
	CategoryBoot       Category = "boot"       // CLI startup, config
	CategoryConvert    Category = "convert"    // Conversion driver, document assembly
	CategoryStep       Category = "step"       // Step dispatch and composite folding
	CategoryEncoder    Category = "encoder"    // Field catalogue mutations
	CategoryTranslator Category = "translator" // Formula parsing and lowering
	CategoryRegistry   Category = "registry"   // Step class lookups
	CategoryLineage    Category = "lineage"    // Field usage closure
	CategoryCatalog    Category = "catalog"    // Conversion history store
)

// Logger wraps a named zap logger for one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	verbose  bool
}

var (
	root    = zap.NewNop()
	cfg     config.LoggingConfig
	cfgMu   sync.RWMutex
	loggers = make(map[Category]*Logger)
)

// Initialize builds the root zap logger from config and installs it.
// The returned logger is owned by the caller, who should Sync it at shutdown.
func Initialize(c config.LoggingConfig) (*zap.Logger, error) {
	var zc zap.Config
	if c.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	}

	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	if c.DebugMode {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	Install(l, c)
	return l, nil
}

// Install replaces the root logger and category config.
// Tests use it with an observer core.
func Install(l *zap.Logger, c config.LoggingConfig) {
	if l == nil {
		l = zap.NewNop()
	}
	cfgMu.Lock()
	defer cfgMu.Unlock()
	root = l
	cfg = c
	loggers = make(map[Category]*Logger)
}

// Root returns the installed root logger.
func Root() *zap.Logger {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return root
}

// IsDebugMode returns whether category debug output is on.
func IsDebugMode() bool {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *Logger {
	cfgMu.RLock()
	if l, ok := loggers[category]; ok {
		cfgMu.RUnlock()
		return l
	}
	cfgMu.RUnlock()

	cfgMu.Lock()
	defer cfgMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	l := &Logger{
		category: category,
		sugar:    root.Named(string(category)).Sugar(),
		verbose:  cfg.IsCategoryEnabled(string(category)),
	}
	loggers[category] = l
	return l
}

// With returns a child logger carrying structured fields, e.g. a run ID.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{
		category: l.category,
		sugar:    l.sugar.Desugar().With(fields...).Sugar(),
		verbose:  l.verbose,
	}
}

// Debug logs a debug message when the category is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message when the category is enabled.
func (l *Logger) Info(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debug(format, args...)
}

// ConvertDebug logs debug to the convert category
func ConvertDebug(format string, args ...interface{}) {
	Get(CategoryConvert).Debug(format, args...)
}

// StepDebug logs debug to the step category
func StepDebug(format string, args ...interface{}) {
	Get(CategoryStep).Debug(format, args...)
}

// StepWarn logs a warning to the step category
func StepWarn(format string, args ...interface{}) {
	Get(CategoryStep).Warn(format, args...)
}

// EncoderDebug logs debug to the encoder category
func EncoderDebug(format string, args ...interface{}) {
	Get(CategoryEncoder).Debug(format, args...)
}

// TranslatorDebug logs debug to the translator category
func TranslatorDebug(format string, args ...interface{}) {
	Get(CategoryTranslator).Debug(format, args...)
}

// RegistryDebug logs debug to the registry category
func RegistryDebug(format string, args ...interface{}) {
	Get(CategoryRegistry).Debug(format, args...)
}

// LineageDebug logs debug to the lineage category
func LineageDebug(format string, args ...interface{}) {
	Get(CategoryLineage).Debug(format, args...)
}

// CatalogDebug logs debug to the catalog category
func CatalogDebug(format string, args ...interface{}) {
	Get(CategoryCatalog).Debug(format, args...)
}

// CatalogWarn logs a warning to the catalog category
func CatalogWarn(format string, args ...interface{}) {
	Get(CategoryCatalog).Warn(format, args...)
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
