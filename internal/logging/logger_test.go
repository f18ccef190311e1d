package logging

import (
	"testing"
	"time"

	"skl2pmml/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, c config.LoggingConfig) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Install(zap.New(core), c)
	t.Cleanup(func() { Install(nil, config.LoggingConfig{}) })
	return logs
}

func TestGet_DisabledCategorySuppressesDebug(t *testing.T) {
	logs := observe(t, config.LoggingConfig{DebugMode: false})

	EncoderDebug("created %s", "x1")
	Get(CategoryEncoder).Info("info %d", 1)
	assert.Equal(t, 0, logs.Len(), "debug/info must be silent when debug_mode is off")

	StepWarn("degraded %s", "ColumnTransformer")
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "degraded ColumnTransformer", entry.Message)
	assert.Equal(t, "step", entry.LoggerName)
}

func TestGet_CategoryFilter(t *testing.T) {
	logs := observe(t, config.LoggingConfig{
		DebugMode:  true,
		Categories: map[string]bool{"translator": false},
	})

	TranslatorDebug("parsed")
	EncoderDebug("derived %s", "eval(X[0])")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "encoder", logs.All()[0].LoggerName)
	assert.Equal(t, "derived eval(X[0])", logs.All()[0].Message)
}

func TestGet_ReturnsCachedLogger(t *testing.T) {
	observe(t, config.LoggingConfig{DebugMode: true})

	a := Get(CategoryConvert)
	b := Get(CategoryConvert)
	assert.Same(t, a, b)
	assert.True(t, IsDebugMode())
	assert.True(t, IsCategoryEnabled(CategoryConvert))
}

func TestLogger_WithCarriesFields(t *testing.T) {
	logs := observe(t, config.LoggingConfig{DebugMode: true})

	Get(CategoryConvert).With(zap.String("run", "abc")).Info("done")

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "abc", ctx["run"])
}

func TestTimer_StopWithThreshold(t *testing.T) {
	logs := observe(t, config.LoggingConfig{DebugMode: false})

	timer := StartTimer(CategoryConvert, "convert")
	timer.start = time.Now().Add(-time.Second)
	elapsed := timer.StopWithThreshold(time.Millisecond)

	assert.GreaterOrEqual(t, elapsed, time.Second)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestInitialize_RejectsUnknownLevel(t *testing.T) {
	t.Cleanup(func() { Install(nil, config.LoggingConfig{}) })

	_, err := Initialize(config.LoggingConfig{Level: "chatty", Format: "console"})
	assert.Error(t, err)

	l, err := Initialize(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.Same(t, l, Root())
}
