package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	"github.com/devlab-sh/devlab/pkg/fsutil"
	"github.com/devlab-sh/devlab/pkg/io/configmanager"
	kindprovisioner "github.com/devlab-sh/devlab/pkg/svc/provisioner/kind"
	"github.com/devlab-sh/devlab/pkg/ui/notify"
	"github.com/spf13/cobra"
)

// clusterDeleter is the slice of the provisioner the down command uses.
type clusterDeleter interface {
	Delete(ctx context.Context) error
}

// newClusterDeleter builds the deleter for a cluster spec. Tests swap it out.
var newClusterDeleter = func(cluster v1alpha1.ClusterSpec, kubeconfig string) clusterDeleter {
	return kindprovisioner.NewProvisioner(kindprovisioner.BuildTopology(cluster), kubeconfig)
}

// NewDownCmd wires the down command.
func NewDownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "down",
		Short:        "Delete the development environment",
		Long:         "Delete the kind cluster and everything installed on it.",
		SilenceUsage: true,
	}

	cfgManager := configmanager.NewCommandConfigManager(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return handleDownRunE(cmd, cfgManager)
	}

	return cmd
}

func handleDownRunE(cmd *cobra.Command, cfgManager *configmanager.ConfigManager) error {
	config, err := cfgManager.LoadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	kubeconfig, err := fsutil.ExpandHomePath(config.Spec.Connection.Kubeconfig)
	if err != nil {
		return fmt.Errorf("expand kubeconfig path: %w", err)
	}

	deleter := newClusterDeleter(config.Spec.Cluster, kubeconfig)

	notify.Titlef(out, "🔥", "Delete cluster %q...", config.Spec.Cluster.Name)

	err = deleter.Delete(cmd.Context())
	if err != nil {
		if errors.Is(err, kindprovisioner.ErrClusterNotFound) {
			notify.Warningf(out, "cluster %q not found, nothing to delete", config.Spec.Cluster.Name)

			return nil
		}

		return fmt.Errorf("delete cluster: %w", err)
	}

	notify.Successf(out, "cluster %q deleted", config.Spec.Cluster.Name)

	return nil
}
