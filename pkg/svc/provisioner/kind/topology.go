package kindprovisioner

import (
	"fmt"
	"path/filepath"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	"github.com/devlab-sh/devlab/pkg/fsutil"
	"sigs.k8s.io/kind/pkg/apis/config/v1alpha4"
)

// Container-side ports published to the host. 80/443 match the ingress-ready
// convention; the NodePort is mapped 1:1.
const (
	containerHTTPPort  int32 = 80
	containerHTTPSPort int32 = 443
)

// ingressReadyPatch labels the control-plane node so ingress controllers
// that select on ingress-ready can schedule there.
const ingressReadyPatch = `kind: InitConfiguration
nodeRegistration:
  kubeletExtraArgs:
    node-labels: "ingress-ready=true"
`

// BuildTopology builds the two-node cluster descriptor from the cluster
// configuration: one control-plane node carrying the host port mappings and
// the certs scratch mount, and one worker node labelled for application
// workloads with a kubelet scratch mount and memory reservation.
func BuildTopology(cluster v1alpha1.ClusterSpec) *v1alpha4.Cluster {
	return &v1alpha4.Cluster{
		TypeMeta: v1alpha4.TypeMeta{
			Kind:       "Cluster",
			APIVersion: "kind.x-k8s.io/v1alpha4",
		},
		Name: cluster.Name,
		Nodes: []v1alpha4.Node{
			controlPlaneNode(cluster),
			workerNode(cluster),
		},
	}
}

func controlPlaneNode(cluster v1alpha1.ClusterSpec) v1alpha4.Node {
	return v1alpha4.Node{
		Role: v1alpha4.ControlPlaneRole,
		KubeadmConfigPatches: []string{
			ingressReadyPatch,
		},
		ExtraPortMappings: []v1alpha4.PortMapping{
			{
				ContainerPort: containerHTTPPort,
				HostPort:      cluster.HTTPHostPort,
				Protocol:      v1alpha4.PortMappingProtocolTCP,
			},
			{
				ContainerPort: containerHTTPSPort,
				HostPort:      cluster.HTTPSHostPort,
				Protocol:      v1alpha4.PortMappingProtocolTCP,
			},
			{
				ContainerPort: cluster.AppNodePort,
				HostPort:      cluster.AppNodePort,
				Protocol:      v1alpha4.PortMappingProtocolTCP,
			},
		},
		ExtraMounts: []v1alpha4.Mount{
			{
				HostPath:      filepath.Join(cluster.ScratchRoot, fsutil.CertsDirName),
				ContainerPath: "/etc/devlab/certs",
			},
		},
	}
}

func workerNode(cluster v1alpha1.ClusterSpec) v1alpha4.Node {
	return v1alpha4.Node{
		Role: v1alpha4.WorkerRole,
		Labels: map[string]string{
			"role": "app",
		},
		KubeadmConfigPatches: []string{
			workerReservedMemoryPatch(cluster.WorkerReservedMemory),
		},
		ExtraMounts: []v1alpha4.Mount{
			{
				HostPath:      filepath.Join(cluster.ScratchRoot, fsutil.WorkerKubeletDirName),
				ContainerPath: "/var/lib/devlab-kubelet",
			},
		},
	}
}

// workerReservedMemoryPatch reserves memory on the worker kubelet so system
// daemons are not starved by application pods.
func workerReservedMemoryPatch(memory string) string {
	return fmt.Sprintf(`kind: JoinConfiguration
nodeRegistration:
  kubeletExtraArgs:
    system-reserved: "memory=%s"
`, memory)
}
