package readiness

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// WaitForAllNodesReady polls until every node in the cluster has condition
// Ready=True and at least expectedNodes nodes are registered. Used after
// cluster creation to ensure both the control-plane and worker have joined
// before components are installed.
func WaitForAllNodesReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	expectedNodes int,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		nodes, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		if len(nodes.Items) < expectedNodes {
			return false, nil
		}

		for i := range nodes.Items {
			if !isNodeReady(&nodes.Items[i]) {
				return false, nil
			}
		}

		return true, nil
	})
}

// isNodeReady returns true if the node has condition Ready=True.
func isNodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}

	return false
}
