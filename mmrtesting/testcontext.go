package mmrtesting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type TestContext struct {
	Log     logger.Logger
	T       *testing.T
	RootDir string
	Label   string
}

type TestConfig struct {
	// TestLabelPrefix names the logger and prefixes Label.
	TestLabelPrefix string
	// LogLevel defaults to NOOP.
	LogLevel string
}

// NewTestContext creates a logger and a private directory tree, removed when
// the test ends.
func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := TestContext{
		T:       t,
		RootDir: t.TempDir(),
		Label:   cfg.TestLabelPrefix + "-" + uuid.NewString(),
	}
	level := cfg.LogLevel
	if level == "" {
		level = "NOOP"
	}
	logger.New(level)
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// Dir returns a created directory under RootDir.
func (c *TestContext) Dir(name string) string {
	dir := filepath.Join(c.RootDir, name)
	require.NoError(c.T, os.MkdirAll(dir, 0o755))
	return dir
}

// NewDir returns a created directory with a unique name.
func (c *TestContext) NewDir() string {
	return c.Dir(uuid.NewString())
}
