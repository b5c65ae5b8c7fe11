package runner_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/devlab-sh/devlab/pkg/runner"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoCommand() *cobra.Command {
	return &cobra.Command{
		Use: "echo",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				cmd.Println(arg)
			}

			return nil
		},
	}
}

func TestRun_CapturesAndDisplaysOutput(t *testing.T) {
	t.Parallel()

	var display bytes.Buffer

	commandRunner := runner.NewCobraCommandRunner(&display, &display)

	result, err := commandRunner.Run(context.Background(), newEchoCommand(), []string{"hello"})

	require.NoError(t, err)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, "hello\n", display.String())
}

func TestRun_CommandError(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{
		Use: "fail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println("partial output")

			return assert.AnError
		},
	}

	commandRunner := runner.NewCobraCommandRunner(&bytes.Buffer{}, &bytes.Buffer{})

	result, err := commandRunner.Run(context.Background(), cmd, nil)

	require.Error(t, err)
	require.ErrorIs(t, err, assert.AnError)

	// Output produced before the failure is still captured.
	assert.Equal(t, "partial output\n", result.Stdout)
}

func TestRun_ContextPropagated(t *testing.T) {
	t.Parallel()

	var seen context.Context

	cmd := &cobra.Command{
		Use: "ctx",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seen = cmd.Context()

			return nil
		},
	}

	type key struct{}

	ctx := context.WithValue(context.Background(), key{}, "value")
	commandRunner := runner.NewCobraCommandRunner(&bytes.Buffer{}, &bytes.Buffer{})

	_, err := commandRunner.Run(ctx, cmd, nil)

	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "value", seen.Value(key{}))
}
