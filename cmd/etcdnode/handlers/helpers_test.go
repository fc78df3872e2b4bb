package handlers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/imamik/etcdnode/internal/facts"
	"github.com/imamik/etcdnode/internal/logging"
)

// saveAndRestoreFactories restores every factory variable after the test
// and installs quiet defaults: no env file, a discarding logger, fixed
// facts and a buffer for stdout.
func saveAndRestoreFactories(t *testing.T) *bytes.Buffer {
	t.Helper()
	origStdout := stdout
	origNewLogger := newLogger
	origLoadEnvFile := loadEnvFile
	origLoadConfigFile := loadConfigFile
	origGatherFacts := gatherFacts
	origNewRunContext := newRunContext
	origRunPipeline := runPipeline
	origNewBackupUploader := newBackupUploader
	origNow := now
	origFileExists := fileExists
	origRunWizard := runWizard
	origBuildConfig := buildConfig
	origWriteConfig := writeConfig
	origNewRemote := newRemote
	origReadFile := readFile
	origKnownHosts := knownHosts

	t.Cleanup(func() {
		stdout = origStdout
		newLogger = origNewLogger
		loadEnvFile = origLoadEnvFile
		loadConfigFile = origLoadConfigFile
		gatherFacts = origGatherFacts
		newRunContext = origNewRunContext
		runPipeline = origRunPipeline
		newBackupUploader = origNewBackupUploader
		now = origNow
		fileExists = origFileExists
		runWizard = origRunWizard
		buildConfig = origBuildConfig
		writeConfig = origWriteConfig
		newRemote = origNewRemote
		readFile = origReadFile
		knownHosts = origKnownHosts
	})

	var buf bytes.Buffer
	stdout = &buf
	newLogger = func(logging.Options) (logr.Logger, func() error, error) {
		return logr.Discard(), func() error { return nil }, nil
	}
	loadEnvFile = func(string) error { return nil }
	gatherFacts = func(context.Context) (facts.Facts, error) {
		return hostB(), nil
	}
	return &buf
}

func hostB() facts.Facts {
	return facts.Facts{
		FQDN:       "b.example.com",
		Hostname:   "b",
		OSFamily:   "debian",
		Interfaces: "lo,eth0",
		IPv4:       map[string]string{"lo": "127.0.0.1", "eth0": "10.0.0.2"},
	}
}

// writeTestConfig writes a configuration for a.example.com, b.example.com
// and c.example.com plus extra YAML lines and returns its path.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "etcdnode.yaml")
	content := "members:\n  - a.example.com\n  - b.example.com\n  - c.example.com\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func intPtr(i int) *int { return &i }
