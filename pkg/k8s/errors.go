package k8s

import "errors"

// ErrKubeconfigPathEmpty is returned when an empty kubeconfig path is given.
var ErrKubeconfigPathEmpty = errors.New("kubeconfig path is empty")
