package kindprovisioner

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/devlab-sh/devlab/pkg/fsutil"
	"github.com/devlab-sh/devlab/pkg/runner"
	"sigs.k8s.io/kind/pkg/apis/config/v1alpha4"
	"sigs.k8s.io/kind/pkg/cluster"
	kindcmd "sigs.k8s.io/kind/pkg/cmd"
	createcluster "sigs.k8s.io/kind/pkg/cmd/kind/create/cluster"
	"sigs.k8s.io/kind/pkg/log"
	"sigs.k8s.io/yaml"
)

// streamLogger forwards kind's console output in real time. Only info-level
// messages (V(0)) are enabled to avoid verbose debug output.
type streamLogger struct {
	writer io.Writer
}

func (l *streamLogger) Warn(message string) {
	l.write(message)
}

func (l *streamLogger) Warnf(format string, args ...any) {
	l.write(fmt.Sprintf(format, args...))
}

func (l *streamLogger) Error(message string) {
	l.write(message)
}

func (l *streamLogger) Errorf(format string, args ...any) {
	l.write(fmt.Sprintf(format, args...))
}

// noopInfoLogger discards verbose/debug messages (V(1) and higher).
type noopInfoLogger struct{}

func (noopInfoLogger) Info(string)          {}
func (noopInfoLogger) Infof(string, ...any) {}
func (noopInfoLogger) Enabled() bool        { return false }

func (l *streamLogger) V(level log.Level) log.InfoLogger {
	if level > 0 {
		return noopInfoLogger{}
	}

	return l
}

func (l *streamLogger) Info(message string) {
	l.write(message)
}

func (l *streamLogger) Infof(format string, args ...any) {
	l.write(fmt.Sprintf(format, args...))
}

func (l *streamLogger) Enabled() bool {
	return true
}

func (l *streamLogger) write(message string) {
	if l == nil {
		return
	}

	if message == "" {
		_, _ = io.WriteString(l.writer, "\n")

		return
	}

	if strings.ContainsRune(message, '\r') || strings.HasSuffix(message, "\n") {
		_, _ = io.WriteString(l.writer, message)

		return
	}

	_, _ = io.WriteString(l.writer, message+"\n")
}

// KindProvider describes the subset of methods from kind's Provider used
// here.
type KindProvider interface {
	Create(name string, opts ...cluster.CreateOption) error
	Delete(name, kubeconfigPath string) error
	List() ([]string, error)
}

// Provisioner provisions the devlab kind cluster. Creation runs through
// kind's Cobra command (which consumes the topology file and streams
// progress); listing and deletion go through the kind SDK provider directly.
type Provisioner struct {
	kubeConfig string
	topology   *v1alpha4.Cluster
	provider   KindProvider
	runner     runner.CommandRunner
}

// NewProvisioner constructs a Provisioner for the given topology and
// kubeconfig path.
func NewProvisioner(topology *v1alpha4.Cluster, kubeConfig string) *Provisioner {
	return NewProvisionerWithDeps(
		topology,
		kubeConfig,
		NewDefaultProviderAdapter(),
		runner.NewCobraCommandRunner(os.Stdout, os.Stderr),
	)
}

// NewProvisionerWithDeps constructs a Provisioner with explicit dependencies
// for testing purposes.
func NewProvisionerWithDeps(
	topology *v1alpha4.Cluster,
	kubeConfig string,
	provider KindProvider,
	commandRunner runner.CommandRunner,
) *Provisioner {
	return &Provisioner{
		kubeConfig: kubeConfig,
		topology:   topology,
		provider:   provider,
		runner:     commandRunner,
	}
}

// Create creates the kind cluster from the topology descriptor.
func (k *Provisioner) Create(ctx context.Context) error {
	// Serialize the topology to a temp file (required by kind's command).
	tmpFile, err := os.CreateTemp("", "devlab-kind-config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	defer func() { _ = tmpFile.Close() }()
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	configYAML, err := yaml.Marshal(k.topology)
	if err != nil {
		return fmt.Errorf("marshal kind config: %w", err)
	}

	const configFilePerms = 0o600

	err = os.WriteFile(tmpFile.Name(), configYAML, configFilePerms)
	if err != nil {
		return fmt.Errorf("write temp config file: %w", err)
	}

	logger := &streamLogger{writer: os.Stdout}
	streams := kindcmd.IOStreams{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}

	cmd := createcluster.NewCommand(logger, streams)

	args := []string{"--name", k.topology.Name, "--config", tmpFile.Name()}

	kubeconfigPath, err := fsutil.ExpandHomePath(k.kubeConfig)
	if err != nil {
		return fmt.Errorf("failed to expand kubeconfig path: %w", err)
	}

	if kubeconfigPath != "" {
		args = append(args, "--kubeconfig", kubeconfigPath)
	}

	_, err = k.runner.Run(ctx, cmd, args)
	if err != nil {
		return fmt.Errorf("failed to create kind cluster: %w", err)
	}

	return nil
}

// Delete deletes the kind cluster. Returns ErrClusterNotFound if the cluster
// does not exist.
func (k *Provisioner) Delete(ctx context.Context) error {
	exists, err := k.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check cluster existence: %w", err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrClusterNotFound, k.topology.Name)
	}

	kubeconfigPath, err := fsutil.ExpandHomePath(k.kubeConfig)
	if err != nil {
		return fmt.Errorf("failed to expand kubeconfig path: %w", err)
	}

	err = k.provider.Delete(k.topology.Name, kubeconfigPath)
	if err != nil {
		return fmt.Errorf("failed to delete kind cluster: %w", err)
	}

	return nil
}

// EnsureRecreated deletes any existing cluster with the target name and
// creates a fresh one, guaranteeing a clean slate on re-runs.
func (k *Provisioner) EnsureRecreated(ctx context.Context) error {
	exists, err := k.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check cluster existence: %w", err)
	}

	if exists {
		deleteErr := k.Delete(ctx)
		if deleteErr != nil {
			return fmt.Errorf("failed to delete existing cluster: %w", deleteErr)
		}
	}

	return k.Create(ctx)
}

// List returns all kind clusters on the host.
func (k *Provisioner) List(_ context.Context) ([]string, error) {
	clusters, err := k.provider.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list kind clusters: %w", err)
	}

	return clusters, nil
}

// Exists checks if the target cluster exists.
func (k *Provisioner) Exists(ctx context.Context) (bool, error) {
	clusters, err := k.List(ctx)
	if err != nil {
		return false, err
	}

	return slices.Contains(clusters, k.topology.Name), nil
}

// NodeCount returns the number of nodes in the topology descriptor.
func (k *Provisioner) NodeCount() int {
	return len(k.topology.Nodes)
}
