package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testConfig struct {
	Value string `yaml:"value"`
}

func loadTestConfig(path string) (*testConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg testConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewManager(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	writeConfigFile(t, configPath, "value: initial\n")

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	manager, err := NewManager(configPath, loadTestConfig, logger, DefaultDebounceDelay)
	require.NoError(t, err)
	defer manager.Close()

	assert.Equal(t, "initial", manager.Get().Value)
}

func TestNewManager_LoadFailure(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	manager, err := NewManager(filepath.Join(t.TempDir(), "missing.yaml"), loadTestConfig, logger, DefaultDebounceDelay)
	assert.Error(t, err)
	assert.Nil(t, manager)
}

func TestManager_ReloadOnChange(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	writeConfigFile(t, configPath, "value: initial\n")

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	manager, err := NewManager(configPath, loadTestConfig, logger, 50*time.Millisecond)
	require.NoError(t, err)
	defer manager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, manager.Watch(ctx))

	writeConfigFile(t, configPath, "value: rotated\n")

	require.Eventually(t, func() bool {
		return manager.Get().Value == "rotated"
	}, 5*time.Second, 25*time.Millisecond, "expected config to hot-reload after file change")
}

func TestManager_KeepsConfigWhenReloadFails(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	writeConfigFile(t, configPath, "value: initial\n")

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	manager, err := NewManager(configPath, loadTestConfig, logger, 50*time.Millisecond)
	require.NoError(t, err)
	defer manager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, manager.Watch(ctx))

	writeConfigFile(t, configPath, "value: [broken\n")

	// The broken file must not replace the last good config.
	assert.Never(t, func() bool {
		return strings.Contains(manager.Get().Value, "broken")
	}, 500*time.Millisecond, 50*time.Millisecond)
	assert.Equal(t, "initial", manager.Get().Value)
}
