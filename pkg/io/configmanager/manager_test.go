package configmanager_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devlab-sh/devlab/pkg/io/configmanager"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFilePermissions = 0o600

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()

	err := os.WriteFile(filepath.Join(dir, "devlab.yaml"), []byte(content), testFilePermissions)
	require.NoError(t, err)
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	manager := configmanager.NewConfigManager(&bytes.Buffer{})

	config, err := manager.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "devlab", config.Spec.Cluster.Name)
	assert.Equal(t, "/tmp/devlab", config.Spec.Cluster.ScratchRoot)
	assert.Equal(t, "istio-system", config.Spec.Mesh.Namespace)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `spec:
  cluster:
    name: staging
    readyTimeout: 2m
  database:
    username: svcuser
`)
	t.Chdir(dir)

	manager := configmanager.NewConfigManager(&bytes.Buffer{})

	config, err := manager.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "staging", config.Spec.Cluster.Name)
	assert.Equal(t, 2*time.Minute, config.Spec.Cluster.ReadyTimeout.Duration)
	assert.Equal(t, "svcuser", config.Spec.Database.Username)

	// Untouched fields keep their defaults.
	assert.Equal(t, "demo", config.Spec.Mesh.Profile)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `spec:
  cluster:
    name: from-file
`)
	t.Chdir(dir)
	t.Setenv("DEVLAB_SPEC_CLUSTER_NAME", "from-env")

	manager := configmanager.NewConfigManager(&bytes.Buffer{})

	config, err := manager.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "from-env", config.Spec.Cluster.Name)
}

func TestLoadConfig_FlagOverridesAll(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `spec:
  cluster:
    name: from-file
`)
	t.Chdir(dir)
	t.Setenv("DEVLAB_SPEC_CLUSTER_NAME", "from-env")

	cmd := &cobra.Command{Use: "test"}
	manager := configmanager.NewCommandConfigManager(cmd)

	require.NoError(t, cmd.ParseFlags([]string{"--name", "from-flag"}))

	config, err := manager.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "from-flag", config.Spec.Cluster.Name)
}

func TestLoadConfig_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "custom.yaml")
	err := os.WriteFile(path, []byte(`spec:
  cluster:
    name: custom
`), testFilePermissions)
	require.NoError(t, err)

	t.Chdir(t.TempDir())

	cmd := &cobra.Command{Use: "test"}
	manager := configmanager.NewCommandConfigManager(cmd)

	require.NoError(t, cmd.ParseFlags([]string{"--config", path}))

	config, loadErr := manager.LoadConfig()

	require.NoError(t, loadErr)
	assert.Equal(t, "custom", config.Spec.Cluster.Name)
}

func TestLoadConfig_ExplicitConfigFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := &cobra.Command{Use: "test"}
	manager := configmanager.NewCommandConfigManager(cmd)

	require.NoError(t, cmd.ParseFlags([]string{"--config", "/nonexistent/devlab.yaml"}))

	_, err := manager.LoadConfig()

	require.Error(t, err)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "spec: [not a mapping")
	t.Chdir(dir)

	manager := configmanager.NewConfigManager(&bytes.Buffer{})

	_, err := manager.LoadConfig()

	require.Error(t, err)
}

func TestLoadConfig_Cached(t *testing.T) {
	t.Chdir(t.TempDir())

	manager := configmanager.NewConfigManager(&bytes.Buffer{})

	first, err := manager.LoadConfig()
	require.NoError(t, err)

	second, err := manager.LoadConfig()
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `spec:
  cluster:
    readyTimeout: -1s
`)
	t.Chdir(dir)

	manager := configmanager.NewConfigManager(&bytes.Buffer{})

	_, err := manager.LoadConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
