package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// EnsureNamespace creates the given namespace if it does not exist. Existing
// namespaces are left untouched, so the call is safe to repeat.
func EnsureNamespace(
	ctx context.Context,
	clientset kubernetes.Interface,
	name string,
) error {
	return EnsureNamespaceWithLabels(ctx, clientset, name, nil)
}

// EnsureNamespaceWithLabels creates the given namespace with the provided
// labels, or patches an existing namespace so the labels are present. Used to
// mark the application namespace for automatic sidecar injection.
func EnsureNamespaceWithLabels(
	ctx context.Context,
	clientset kubernetes.Interface,
	name string,
	labels map[string]string,
) error {
	namespace, err := clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			newNS := &corev1.Namespace{
				ObjectMeta: metav1.ObjectMeta{
					Name:   name,
					Labels: labels,
				},
			}

			_, err = clientset.CoreV1().Namespaces().Create(ctx, newNS, metav1.CreateOptions{})
			if err != nil {
				return fmt.Errorf("create namespace: %w", err)
			}

			return nil
		}

		return fmt.Errorf("get namespace: %w", err)
	}

	if len(labels) == 0 {
		return nil
	}

	// Namespace exists, ensure the requested labels are set.
	if namespace.Labels == nil {
		namespace.Labels = make(map[string]string)
	}

	updated := false

	for k, v := range labels {
		if namespace.Labels[k] != v {
			namespace.Labels[k] = v
			updated = true
		}
	}

	if updated {
		_, err = clientset.CoreV1().Namespaces().Update(ctx, namespace, metav1.UpdateOptions{})
		if err != nil {
			return fmt.Errorf("update namespace labels: %w", err)
		}
	}

	return nil
}
