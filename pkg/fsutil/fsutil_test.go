package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devlab-sh/devlab/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHomePath_Tilde(t *testing.T) {
	t.Parallel()

	expanded, err := fsutil.ExpandHomePath("~/.kube/config")

	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(expanded))
	assert.Contains(t, expanded, filepath.Join(".kube", "config"))
	assert.NotContains(t, expanded, "~")
}

func TestExpandHomePath_AbsoluteUnchanged(t *testing.T) {
	t.Parallel()

	expanded, err := fsutil.ExpandHomePath("/etc/kubernetes/admin.conf")

	require.NoError(t, err)
	assert.Equal(t, "/etc/kubernetes/admin.conf", expanded)
}

func TestExpandHomePath_RelativeMadeAbsolute(t *testing.T) {
	t.Parallel()

	expanded, err := fsutil.ExpandHomePath("kubeconfig.yaml")

	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(expanded))
}

func TestExpandHomePath_EmptyStaysEmpty(t *testing.T) {
	t.Parallel()

	expanded, err := fsutil.ExpandHomePath("")

	require.NoError(t, err)
	assert.Empty(t, expanded)
}

func TestEnsureScratchDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	err := fsutil.EnsureScratchDirs(root)

	require.NoError(t, err)

	for _, name := range []string{fsutil.CertsDirName, fsutil.WorkerKubeletDirName} {
		info, statErr := os.Stat(filepath.Join(root, name))
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0o777), info.Mode().Perm())
	}
}

func TestEnsureScratchDirs_Idempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	require.NoError(t, fsutil.EnsureScratchDirs(root))

	// Tighten permissions to simulate a partial earlier run, then re-ensure.
	certsDir := filepath.Join(root, fsutil.CertsDirName)
	require.NoError(t, os.Chmod(certsDir, 0o700))

	require.NoError(t, fsutil.EnsureScratchDirs(root))

	info, err := os.Stat(certsDir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o777), info.Mode().Perm())
}
