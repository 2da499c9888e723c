package common

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	l := NewLogger()
	l.Out = &out
	l.Err = &errOut
	l.ShowColors = false
	return l, &out, &errOut
}

func TestLogger_Levels(t *testing.T) {
	l, out, errOut := newTestLogger()
	l.ShowEmojis = false

	l.Info("hello %s", "world")
	l.Debug("hidden")
	l.Error("boom")

	assert.Contains(t, out.String(), "[INFO]  hello world")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, errOut.String(), "[ERROR] boom")

	l.Level = LogLevelDebug
	l.Debug("shown")
	assert.Contains(t, out.String(), "[DEBUG] shown")
}

func TestLogger_SilentStillShowsErrors(t *testing.T) {
	l, out, errOut := newTestLogger()
	l.SetSilentMode(true)

	l.Info("quiet")
	l.Success("quiet")
	l.Inline("quiet")
	l.Error("loud")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "loud")
}

func TestLogger_InlineRedraw(t *testing.T) {
	l, out, _ := newTestLogger()
	l.ShowEmojis = false

	l.Inline("T-%d", 2)
	l.Inline("T-%d", 1)
	l.Info("fired")

	assert.Equal(t, "\r[WAIT] T-2\033[K\r[WAIT] T-1\033[K\n[INFO]  fired\n", out.String())

	out.Reset()
	l.EndInline()
	assert.Empty(t, out.String(), "nothing to terminate")
}

func TestSetupLogger(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterCommonFlags(fs)
	require.NoError(t, fs.Parse([]string{"-verbose", "-no-emojis", "-no-colors"}))

	l := NewLogger()
	SetupLogger(l, flags)
	assert.Equal(t, LogLevelDebug, l.Level)
	assert.False(t, l.ShowEmojis)
	assert.False(t, l.ShowColors)
	assert.False(t, l.SilentMode)
	assert.Equal(t, ".env", *flags.EnvFile)
}

func TestFlagValidator(t *testing.T) {
	v := NewFlagValidator()
	v.ValidateChoice("exchange", "kraken", []string{"binance", "bybit"})
	v.RequireTogether(map[string]string{"symbol": "BTCUSDT", "side": "", "price": ""})
	v.ValidateFile("config", filepath.Join(t.TempDir(), "nope.yaml"), false)

	require.True(t, v.HasErrors())
	errs := v.GetErrors()
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "exchange must be one of [binance, bybit]")
	assert.Equal(t, "missing -price, -side", errs[1])

	var buf bytes.Buffer
	v.PrintErrors(&buf)
	assert.Contains(t, buf.String(), "Flag validation errors")

	ok := NewFlagValidator().RequireTogether(map[string]string{"symbol": "", "side": ""})
	assert.False(t, ok.HasErrors(), "nothing set is fine")
	assert.NoError(t, ok.GetError())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRADER_TEST_ENV_VALUE=from-file\n"), 0o644))
	t.Setenv("TRADER_TEST_ENV_VALUE", "")
	require.NoError(t, os.Unsetenv("TRADER_TEST_ENV_VALUE"))

	l, _, _ := newTestLogger()
	require.NoError(t, NewEnvLoader(l).LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("TRADER_TEST_ENV_VALUE"))

	assert.NoError(t, NewEnvLoader(l).LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintVersion(&buf, "trader")
	assert.Contains(t, buf.String(), "trader v"+ProjectVersion)
	assert.True(t, IsDevBuild())
}
