// Package kubectl exposes kubectl's Cobra commands for programmatic use.
//
// Rather than shelling out to a kubectl binary, devlab embeds the command
// tree from k8s.io/kubectl and executes it through a CommandRunner. Commands
// created here accept the same flags and arguments as the CLI, including
// applying manifests directly from URLs.
package kubectl

import (
	"context"
	"fmt"

	"github.com/devlab-sh/devlab/pkg/runner"
	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/cli-runtime/pkg/genericiooptions"
	"k8s.io/kubectl/pkg/cmd/apply"
	cmdutil "k8s.io/kubectl/pkg/cmd/util"
)

// Client creates kubectl Cobra commands bound to a kubeconfig and IO streams.
type Client struct {
	streams genericiooptions.IOStreams
	runner  runner.CommandRunner
}

// NewClient creates a kubectl client writing to the provided IO streams.
func NewClient(streams genericiooptions.IOStreams) *Client {
	return &Client{
		streams: streams,
		runner:  runner.NewCobraCommandRunner(streams.Out, streams.ErrOut),
	}
}

// NewClientWithRunner creates a kubectl client with an explicit command
// runner for testing purposes.
func NewClientWithRunner(streams genericiooptions.IOStreams, r runner.CommandRunner) *Client {
	return &Client{
		streams: streams,
		runner:  r,
	}
}

// CreateApplyCommand returns a kubectl apply command bound to the given
// kubeconfig and context.
func (c *Client) CreateApplyCommand(kubeconfig, kubeContext string) *cobra.Command {
	factory := newFactory(kubeconfig, kubeContext)

	return apply.NewCmdApply("kubectl", factory, c.streams)
}

// Apply runs kubectl apply against the given manifest source. The source may
// be a local file path or a URL; kubectl's resource builder handles both.
func (c *Client) Apply(ctx context.Context, kubeconfig, kubeContext, source string) error {
	cmd := c.CreateApplyCommand(kubeconfig, kubeContext)

	_, err := c.runner.Run(ctx, cmd, []string{"-f", source})
	if err != nil {
		return fmt.Errorf("apply manifest %s: %w", source, err)
	}

	return nil
}

// newFactory builds a kubectl command factory for the given kubeconfig and
// context.
func newFactory(kubeconfig, kubeContext string) cmdutil.Factory {
	configFlags := genericclioptions.NewConfigFlags(true)

	if kubeconfig != "" {
		configFlags.KubeConfig = &kubeconfig
	}

	if kubeContext != "" {
		configFlags.Context = &kubeContext
	}

	matchVersionFlags := cmdutil.NewMatchVersionFlags(configFlags)

	return cmdutil.NewFactory(matchVersionFlags)
}
