package readiness

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// WaitForPodsReady polls until the namespace contains at least one pod and
// every pod in it is either Ready or Succeeded. Used after mesh installation
// where the control plane and add-ons land in a single namespace.
func WaitForPodsReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		if len(pods.Items) == 0 {
			return false, nil
		}

		for i := range pods.Items {
			if !isPodReadyOrSucceeded(&pods.Items[i]) {
				return false, nil
			}
		}

		return true, nil
	})
}

// isPodReadyOrSucceeded returns true for pods that completed successfully or
// are running with condition Ready=True.
func isPodReadyOrSucceeded(pod *corev1.Pod) bool {
	if pod.Status.Phase == corev1.PodSucceeded {
		return true
	}

	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}

	return false
}
