package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	SetConsole(buf, false)
	defer SetConsole(os.Stdout, true)

	logFile := filepath.Join(t.TempDir(), "portstore.log")
	SetFile(&FileOptions{Path: logFile, MaxSizeMB: 1})
	defer SetFile(nil)

	oldLevel := GetLogLevel()
	defer SetLogLevel(oldLevel)

	SetLogLevel(TraceLevel)
	Info("before start")

	require.NoError(t, Start())
	require.ErrorIs(t, Start(), ErrAlreadyStarted)

	// log
	Trace("Trace")
	Debug("Debug")
	Info("Info")
	Warning("Warning")
	Error("Error")
	Critical("Critical")

	// logf
	Tracef("Trace %s", "f")
	Debugf("Debug %s", "f")
	Infof("Info %s", "f")
	Warningf("Warning %s", "f")
	Errorf("Error %s", "f")
	Criticalf("Critical %s", "f")

	// play with levels
	SetLogLevel(CriticalLevel)
	Warning("suppressed")
	SetLogLevel(TraceLevel)

	// log invalid level
	log(0xFF, "invalid level")

	Shutdown()
	Shutdown()

	output := buf.String()
	for _, msg := range []string{
		"before start",
		"TRAC", "DEBU", "INFO", "WARN", "ERRO", "CRIT",
		"Trace f", "Critical f",
		"NONE", "invalid level",
		"===== LOGGING STOPPED =====",
	} {
		assert.Contains(t, output, msg)
	}
	assert.NotContains(t, output, "suppressed")
	assert.NotContains(t, output, "\033[", "colors must be disabled")

	fileOutput, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(fileOutput), "Critical f")
}

func TestPkgLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	SetConsole(buf, false)
	defer SetConsole(os.Stdout, true)

	oldLevel := GetLogLevel()
	defer SetLogLevel(oldLevel)
	SetLogLevel(ErrorLevel)

	levels, err := ParsePkgLevels("log=trace,database=debug")
	require.NoError(t, err)
	assert.Equal(t, map[string]Severity{"log": TraceLevel, "database": DebugLevel}, levels)

	SetPkgLevels(levels)
	defer UnSetPkgLevels()

	require.NoError(t, Start())
	Debug("package debug")
	Shutdown()

	assert.True(t, strings.Contains(buf.String(), "package debug"))

	_, err = ParsePkgLevels("database")
	require.Error(t, err)
	_, err = ParsePkgLevels("database=loud")
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TraceLevel, ParseLevel("trace"))
	assert.Equal(t, WarningLevel, ParseLevel("WARNING"))
	assert.Equal(t, Severity(0), ParseLevel("loud"))
}
