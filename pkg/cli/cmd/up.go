package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	dockerclient "github.com/devlab-sh/devlab/pkg/client/docker"
	"github.com/devlab-sh/devlab/pkg/client/helm"
	"github.com/devlab-sh/devlab/pkg/client/kubectl"
	"github.com/devlab-sh/devlab/pkg/fsutil"
	"github.com/devlab-sh/devlab/pkg/io/configmanager"
	"github.com/devlab-sh/devlab/pkg/k8s"
	"github.com/devlab-sh/devlab/pkg/k8s/readiness"
	istioinstaller "github.com/devlab-sh/devlab/pkg/svc/installer/istio"
	mongodbinstaller "github.com/devlab-sh/devlab/pkg/svc/installer/mongodb"
	monitoringinstaller "github.com/devlab-sh/devlab/pkg/svc/installer/monitoring"
	"github.com/devlab-sh/devlab/pkg/svc/pipeline"
	"github.com/devlab-sh/devlab/pkg/svc/preflight"
	kindprovisioner "github.com/devlab-sh/devlab/pkg/svc/provisioner/kind"
	"github.com/devlab-sh/devlab/pkg/ui/notify"
	"github.com/devlab-sh/devlab/pkg/ui/timer"
	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericiooptions"
	"k8s.io/client-go/kubernetes"
)

// NewUpCmd wires the up command.
func NewUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision the development environment",
		Long: "Provision a fresh kind cluster with Istio, MongoDB, and the " +
			"monitoring stack. An existing cluster with the same name is deleted " +
			"first, so re-running always yields a clean environment.",
		SilenceUsage: true,
	}

	cfgManager := configmanager.NewCommandConfigManager(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return handleUpRunE(cmd, cfgManager)
	}

	return cmd
}

// upDeps holds cluster-bound clients. They are constructed by the readiness
// step once the cluster exists; later steps may assume they are set because
// the runner skips them when an earlier step failed.
type upDeps struct {
	clientset  kubernetes.Interface
	helmClient helm.Interface
}

func handleUpRunE(cmd *cobra.Command, cfgManager *configmanager.ConfigManager) error {
	config, err := cfgManager.LoadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	kubeconfig, err := fsutil.ExpandHomePath(config.Spec.Connection.Kubeconfig)
	if err != nil {
		return fmt.Errorf("expand kubeconfig path: %w", err)
	}

	kubeContext := config.Spec.Connection.Context
	if kubeContext == "" {
		// kind registers its context as kind-<cluster name>.
		kubeContext = "kind-" + config.Spec.Cluster.Name
	}

	topology := kindprovisioner.BuildTopology(config.Spec.Cluster)
	provisioner := kindprovisioner.NewProvisioner(topology, kubeconfig)

	deps := &upDeps{}

	showTimings, _ := cmd.Flags().GetBool(timingFlagName)

	var tmr timer.Timer
	if showTimings {
		tmr = timer.New()
	}

	steps := []pipeline.Step{
		{
			Name:  "check prerequisites",
			Emoji: "🔍",
			Fn: func(ctx context.Context) error {
				return runPreflight(ctx, out)
			},
		},
		{
			Name:  "prepare scratch directories",
			Emoji: "📁",
			Fn: func(_ context.Context) error {
				return fsutil.EnsureScratchDirs(config.Spec.Cluster.ScratchRoot)
			},
		},
		{
			Name:  "create cluster",
			Emoji: "🚀",
			Fn:    provisioner.EnsureRecreated,
		},
		{
			Name:  "wait for nodes",
			Emoji: "⏳",
			Fn: func(ctx context.Context) error {
				return connectAndWaitForNodes(
					ctx, deps, kubeconfig, kubeContext,
					provisioner.NodeCount(), config.Spec.Cluster,
				)
			},
		},
		{
			Name:  "install service mesh",
			Emoji: "🕸️",
			Fn: func(ctx context.Context) error {
				streams := genericiooptions.IOStreams{
					In:     cmd.InOrStdin(),
					Out:    cmd.OutOrStdout(),
					ErrOut: cmd.ErrOrStderr(),
				}
				installer := istioinstaller.NewIstioInstaller(
					deps.helmClient,
					deps.clientset,
					kubectl.NewClient(streams),
					config.Spec.Mesh,
					kubeconfig, kubeContext,
					tmr,
					out,
				)

				return installer.Install(ctx)
			},
		},
		{
			Name:  "install database",
			Emoji: "🗄️",
			Fn: func(ctx context.Context) error {
				installer := mongodbinstaller.NewMongoDBInstaller(
					deps.helmClient, deps.clientset, config.Spec.Database, helm.DefaultTimeout,
				)

				return installer.Install(ctx)
			},
		},
		{
			Name:  "install monitoring",
			Emoji: "📈",
			Fn: func(ctx context.Context) error {
				installer := monitoringinstaller.NewMonitoringInstaller(
					deps.helmClient, deps.clientset, config.Spec.Monitoring, helm.DefaultTimeout,
				)

				return installer.Install(ctx)
			},
		},
	}

	runner := pipeline.NewRunner(out, tmr)

	results, runErr := runner.Run(ctx, steps...)

	notify.Titlef(out, "📋", "Summary")
	pipeline.PrintResults(out, results)

	if runErr != nil {
		return runErr
	}

	pipeline.PrintNextSteps(out, config)

	return nil
}

// runPreflight checks host prerequisites and prints the per-check outcome.
func runPreflight(ctx context.Context, out io.Writer) error {
	docker, err := dockerclient.GetConcreteDockerClient()
	if err != nil {
		return fmt.Errorf("create docker client: %w", err)
	}

	defer func() { _ = docker.Close() }()

	results, checkErr := preflight.NewDefaultChecker(docker).Run(ctx)

	for _, result := range results {
		switch result.Status {
		case preflight.StatusOK:
			notify.Successf(out, "%s %s", result.Name, result.Status)
		case preflight.StatusBuiltin:
			notify.Infof(out, "%s %s", result.Name, result.Status)
		case preflight.StatusFailed:
			notify.Errorf(out, "%s: %v", result.Name, result.Err)
		}
	}

	return checkErr
}

// connectAndWaitForNodes builds the cluster-bound clients and blocks until
// the API server answers and every node is Ready.
func connectAndWaitForNodes(
	ctx context.Context,
	deps *upDeps,
	kubeconfig, kubeContext string,
	expectedNodes int,
	cluster v1alpha1.ClusterSpec,
) error {
	clientset, err := k8s.NewClientset(kubeconfig, kubeContext)
	if err != nil {
		return fmt.Errorf("connect to cluster: %w", err)
	}

	helmClient, err := helm.NewClient(kubeconfig, kubeContext)
	if err != nil {
		return fmt.Errorf("create helm client: %w", err)
	}

	deps.clientset = clientset
	deps.helmClient = helmClient

	err = readiness.WaitForAPIServerReady(ctx, clientset, cluster.ReadyTimeout.Duration)
	if err != nil {
		return fmt.Errorf("api server not ready: %w", err)
	}

	err = readiness.WaitForAllNodesReady(ctx, clientset, expectedNodes, cluster.ReadyTimeout.Duration)
	if err != nil {
		return fmt.Errorf("nodes not ready: %w", err)
	}

	return nil
}
