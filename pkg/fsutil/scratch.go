package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// scratchDirPerms is deliberately world-writable: the directories are bind
// mounted into cluster node containers whose processes run as arbitrary UIDs.
const scratchDirPerms = 0o777

// Scratch subdirectory names under the configured scratch root.
const (
	CertsDirName         = "certs"
	WorkerKubeletDirName = "worker-kubelet"
)

// EnsureScratchDirs creates the host scratch directories mounted into the
// cluster nodes. Idempotent: existing directories are re-chmodded so a
// previous run with tighter permissions does not break node startup.
func EnsureScratchDirs(root string) error {
	for _, name := range []string{CertsDirName, WorkerKubeletDirName} {
		dir := filepath.Join(root, name)

		err := os.MkdirAll(dir, scratchDirPerms)
		if err != nil {
			return fmt.Errorf("create scratch directory %s: %w", dir, err)
		}

		// MkdirAll applies umask; chmod to the intended mode explicitly.
		err = os.Chmod(dir, scratchDirPerms)
		if err != nil {
			return fmt.Errorf("chmod scratch directory %s: %w", dir, err)
		}
	}

	return nil
}
