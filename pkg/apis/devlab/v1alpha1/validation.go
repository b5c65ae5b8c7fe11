package v1alpha1

import (
	"errors"
	"fmt"
)

var (
	// ErrClusterNameEmpty is returned when the cluster name is unset.
	ErrClusterNameEmpty = errors.New("cluster name must not be empty")
	// ErrTimeoutNotPositive is returned when a readiness timeout is zero or
	// negative.
	ErrTimeoutNotPositive = errors.New("readiness timeout must be positive")
	// ErrNamespaceEmpty is returned when a component namespace is unset.
	ErrNamespaceEmpty = errors.New("namespace must not be empty")
)

// Validate checks a Config for values the pipeline cannot work with.
// Defaults are expected to have been applied first.
func Validate(c *Config) error {
	if c.Spec.Cluster.Name == "" {
		return ErrClusterNameEmpty
	}

	if c.Spec.Cluster.ReadyTimeout.Duration <= 0 {
		return fmt.Errorf("cluster: %w", ErrTimeoutNotPositive)
	}

	if c.Spec.Mesh.ReadyTimeout.Duration <= 0 {
		return fmt.Errorf("mesh: %w", ErrTimeoutNotPositive)
	}

	for _, pair := range []struct {
		component string
		namespace string
	}{
		{"mesh", c.Spec.Mesh.Namespace},
		{"database", c.Spec.Database.Namespace},
		{"monitoring", c.Spec.Monitoring.Namespace},
	} {
		if pair.namespace == "" {
			return fmt.Errorf("%s: %w", pair.component, ErrNamespaceEmpty)
		}
	}

	return nil
}
