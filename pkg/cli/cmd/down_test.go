package cmd

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	kindprovisioner "github.com/devlab-sh/devlab/pkg/svc/provisioner/kind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDeleter stands in for the kind provisioner in down command tests.
type stubDeleter struct {
	err    error
	called bool
}

func (s *stubDeleter) Delete(_ context.Context) error {
	s.called = true

	return s.err
}

// withStubDeleter swaps the provisioner factory for the test's lifetime.
// Tests using it must not run in parallel.
func withStubDeleter(t *testing.T, stub *stubDeleter) {
	t.Helper()

	original := newClusterDeleter
	newClusterDeleter = func(_ v1alpha1.ClusterSpec, _ string) clusterDeleter {
		return stub
	}

	t.Cleanup(func() { newClusterDeleter = original })
}

func executeDown(t *testing.T) (string, error) {
	t.Helper()

	downCmd := NewDownCmd()

	var buf bytes.Buffer

	downCmd.SetOut(&buf)
	downCmd.SetErr(&buf)
	downCmd.SetArgs(nil)

	err := downCmd.Execute()

	return buf.String(), err
}

func TestDownCmd_DeletesCluster(t *testing.T) {
	stub := &stubDeleter{}
	withStubDeleter(t, stub)

	output, err := executeDown(t)

	require.NoError(t, err)
	assert.True(t, stub.called)
	assert.Contains(t, output, "deleted")
}

func TestDownCmd_ClusterNotFoundIsSuccess(t *testing.T) {
	stub := &stubDeleter{
		err: fmt.Errorf("%w: devlab", kindprovisioner.ErrClusterNotFound),
	}
	withStubDeleter(t, stub)

	output, err := executeDown(t)

	require.NoError(t, err)
	assert.Contains(t, output, "not found, nothing to delete")
}

func TestDownCmd_DeleteError(t *testing.T) {
	stub := &stubDeleter{err: assert.AnError}
	withStubDeleter(t, stub)

	_, err := executeDown(t)

	require.Error(t, err)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "delete cluster")
}
