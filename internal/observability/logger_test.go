// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/lantern/internal/config"
)

// initCaptured initializes the logger against an in-memory console sink so
// tests can assert on the rendered output. The singleton is reset first for
// isolation.
func initCaptured(t *testing.T, cfg config.LoggerConfig) *bytes.Buffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))
	return &buf
}

func TestConsoleFormatColorizesLevel(t *testing.T) {
	buf := initCaptured(t, config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "lantern",
		Colors:      config.ColorConfig{Info: "green"},
	})

	GetLogger().Named("pipeline").Info("phase complete",
		zap.String("from", "styled"),
		zap.String("to", "laid_out"))

	out := buf.String()
	assert.Contains(t, out, ansi["green"]+"INFO"+ansiReset)
	assert.Contains(t, out, "phase complete")
	assert.Contains(t, out, "lantern.pipeline.", "component name carries the dot suffix")
}

func TestConsoleFormatUncoloredLevelPrintsPlain(t *testing.T) {
	buf := initCaptured(t, config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "lantern",
		// No color configured for warn.
		Colors: config.ColorConfig{Info: "green"},
	})

	GetLogger().Named("network").Warn("fetch failed")

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.NotContains(t, out, ansi["yellow"])
}

func TestJSONFormatEmitsStructuredFields(t *testing.T) {
	buf := initCaptured(t, config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "lantern",
	})

	GetLogger().Named("network").Info("fetched",
		zap.String("url", "http://example.org/index.html"),
		zap.Int("status", 200),
		zap.Duration("duration", 42*time.Millisecond))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "file/JSON sink output must parse")
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "lantern.network", entry["logger"])
	assert.Equal(t, "fetched", entry["msg"])
	assert.Equal(t, "http://example.org/index.html", entry["url"])
	assert.Equal(t, float64(200), entry["status"])
}

func TestLogFileSinkIsAlwaysJSON(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "lantern.log")
	initCaptured(t, config.LoggerConfig{
		Level:   "debug",
		Format:  "console", // console format must not leak into the file
		LogFile: logFile,
		MaxSize: 1,
	})

	GetLogger().Named("layout").Error("font lookup failed")
	Sync()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "font lookup failed", entry["msg"])
}

func TestInitializeFirstConfigurationWins(t *testing.T) {
	buf := initCaptured(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "lantern"})
	first := GetLogger()

	// A second Initialize is ignored; the browser shell and the snapshot
	// command may both pass through the bootstrap path.
	Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "other"}, zapcore.AddSync(&bytes.Buffer{}))
	second := GetLogger()

	assert.Same(t, first, second)
	second.Info("still the first")
	assert.Contains(t, buf.String(), `"logger":"lantern"`)
	assert.NotContains(t, buf.String(), "other")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	buf := initCaptured(t, config.LoggerConfig{Level: "chatty", Format: "json", ServiceName: "lantern"})

	GetLogger().Debug("suppressed")
	GetLogger().Info("visible")

	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "visible")
}

func TestGetLoggerBeforeInitializeFallsBack(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	// The fallback must be usable; components log through it during early
	// config failures.
	logger.Info("fallback works")
}

func TestGetLoggerReturnsStoredInstance(t *testing.T) {
	initCaptured(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "lantern"})
	assert.Same(t, global.Load(), GetLogger())
}
