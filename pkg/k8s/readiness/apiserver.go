package readiness

import (
	"context"
	"time"

	"k8s.io/client-go/kubernetes"
)

// WaitForAPIServerReady waits for the Kubernetes API server to respond.
//
// The API server may be unstable right after cluster bootstrap; this polls a
// lightweight ServerVersion request until it succeeds or the deadline passes.
func WaitForAPIServerReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(_ context.Context) (bool, error) {
		_, err := clientset.Discovery().ServerVersion()
		if err != nil {
			// Continue polling on any error - the API server is not ready yet
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return true, nil
	})
}
