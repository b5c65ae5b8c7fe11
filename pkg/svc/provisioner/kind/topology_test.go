package kindprovisioner_test

import (
	"os"
	"testing"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	kindprovisioner "github.com/devlab-sh/devlab/pkg/svc/provisioner/kind"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kindv1alpha4 "sigs.k8s.io/kind/pkg/apis/config/v1alpha4"
	"sigs.k8s.io/yaml"
)

func TestMain(m *testing.M) {
	exitCode := m.Run()

	_, err := snaps.Clean(m, snaps.CleanOpts{Sort: true})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to clean snapshots: " + err.Error() + "\n")

		os.Exit(1)
	}

	os.Exit(exitCode)
}

func defaultClusterSpec() v1alpha1.ClusterSpec {
	config := v1alpha1.NewConfig()

	return config.Spec.Cluster
}

func TestBuildTopology_Nodes(t *testing.T) {
	t.Parallel()

	topology := kindprovisioner.BuildTopology(defaultClusterSpec())

	require.Len(t, topology.Nodes, 2)
	assert.Equal(t, "devlab", topology.Name)
	assert.Equal(t, kindv1alpha4.ControlPlaneRole, topology.Nodes[0].Role)
	assert.Equal(t, kindv1alpha4.WorkerRole, topology.Nodes[1].Role)
}

func TestBuildTopology_PortMappings(t *testing.T) {
	t.Parallel()

	spec := defaultClusterSpec()
	spec.HTTPHostPort = 9080
	spec.HTTPSHostPort = 9443
	spec.AppNodePort = 31000

	topology := kindprovisioner.BuildTopology(spec)

	mappings := topology.Nodes[0].ExtraPortMappings
	require.Len(t, mappings, 3)

	assert.Equal(t, int32(80), mappings[0].ContainerPort)
	assert.Equal(t, int32(9080), mappings[0].HostPort)
	assert.Equal(t, int32(443), mappings[1].ContainerPort)
	assert.Equal(t, int32(9443), mappings[1].HostPort)

	// The NodePort is mapped 1:1 so services are reachable without
	// port-forwarding.
	assert.Equal(t, int32(31000), mappings[2].ContainerPort)
	assert.Equal(t, int32(31000), mappings[2].HostPort)

	// The worker publishes nothing.
	assert.Empty(t, topology.Nodes[1].ExtraPortMappings)
}

func TestBuildTopology_WorkerLabelsAndPatches(t *testing.T) {
	t.Parallel()

	spec := defaultClusterSpec()
	spec.WorkerReservedMemory = "1Gi"

	topology := kindprovisioner.BuildTopology(spec)

	worker := topology.Nodes[1]
	assert.Equal(t, map[string]string{"role": "app"}, worker.Labels)

	require.Len(t, worker.KubeadmConfigPatches, 1)
	assert.Contains(t, worker.KubeadmConfigPatches[0], `system-reserved: "memory=1Gi"`)

	controlPlane := topology.Nodes[0]
	require.Len(t, controlPlane.KubeadmConfigPatches, 1)
	assert.Contains(t, controlPlane.KubeadmConfigPatches[0], "ingress-ready=true")
}

func TestBuildTopology_ScratchMounts(t *testing.T) {
	t.Parallel()

	spec := defaultClusterSpec()
	spec.ScratchRoot = "/var/tmp/scratch"

	topology := kindprovisioner.BuildTopology(spec)

	controlPlaneMounts := topology.Nodes[0].ExtraMounts
	require.Len(t, controlPlaneMounts, 1)
	assert.Equal(t, "/var/tmp/scratch/certs", controlPlaneMounts[0].HostPath)
	assert.Equal(t, "/etc/devlab/certs", controlPlaneMounts[0].ContainerPath)

	workerMounts := topology.Nodes[1].ExtraMounts
	require.Len(t, workerMounts, 1)
	assert.Equal(t, "/var/tmp/scratch/worker-kubelet", workerMounts[0].HostPath)
	assert.Equal(t, "/var/lib/devlab-kubelet", workerMounts[0].ContainerPath)
}

func TestBuildTopology_Snapshot(t *testing.T) {
	t.Parallel()

	topology := kindprovisioner.BuildTopology(defaultClusterSpec())

	rendered, err := yaml.Marshal(topology)
	require.NoError(t, err)

	snaps.MatchSnapshot(t, string(rendered))
}
