package v1alpha1_test

import (
	"testing"
	"time"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	config := v1alpha1.NewConfig()

	assert.Equal(t, "Config", config.Kind)
	assert.Equal(t, "devlab.sh/v1alpha1", config.APIVersion)
	assert.Equal(t, "devlab", config.Spec.Cluster.Name)
	assert.Equal(t, "/tmp/devlab", config.Spec.Cluster.ScratchRoot)
	assert.Equal(t, int32(8080), config.Spec.Cluster.HTTPHostPort)
	assert.Equal(t, int32(8443), config.Spec.Cluster.HTTPSHostPort)
	assert.Equal(t, int32(30080), config.Spec.Cluster.AppNodePort)
	assert.Equal(t, "512Mi", config.Spec.Cluster.WorkerReservedMemory)
	assert.Equal(t, 5*time.Minute, config.Spec.Cluster.ReadyTimeout.Duration)

	assert.Equal(t, "istio-system", config.Spec.Mesh.Namespace)
	assert.Equal(t, "demo", config.Spec.Mesh.Profile)
	assert.Equal(t, "default", config.Spec.Mesh.InjectionNamespace)
	assert.Equal(t, 10*time.Minute, config.Spec.Mesh.ReadyTimeout.Duration)

	assert.Equal(t, "database", config.Spec.Database.Namespace)
	assert.Equal(t, "bitnami/mongodb", config.Spec.Database.ChartName)

	assert.Equal(t, "monitoring", config.Spec.Monitoring.Namespace)
	assert.Equal(
		t,
		"prometheus-community/kube-prometheus-stack",
		config.Spec.Monitoring.ChartName,
	)
}

func TestSetDefaults_PreservesExplicitValues(t *testing.T) {
	t.Parallel()

	config := &v1alpha1.Config{}
	config.Spec.Cluster.Name = "staging"
	config.Spec.Mesh.Profile = "minimal"
	config.Spec.Database.Username = "custom"

	v1alpha1.SetDefaults(config)

	assert.Equal(t, "staging", config.Spec.Cluster.Name)
	assert.Equal(t, "minimal", config.Spec.Mesh.Profile)
	assert.Equal(t, "custom", config.Spec.Database.Username)

	// Untouched fields still default.
	assert.Equal(t, "istio-system", config.Spec.Mesh.Namespace)
	assert.Equal(t, "apppass", config.Spec.Database.Password)
}

func TestSetDefaults_NilConfig(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { v1alpha1.SetDefaults(nil) })
}

func TestDefaultAddons(t *testing.T) {
	t.Parallel()

	addons := v1alpha1.DefaultAddons()

	require.Len(t, addons, 4)

	names := make([]string, 0, len(addons))
	for _, addon := range addons {
		names = append(names, addon.Name)
		assert.Contains(t, addon.URL, addon.Name+".yaml")
	}

	assert.Equal(t, []string{"prometheus", "kiali", "grafana", "jaeger"}, names)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	err := v1alpha1.Validate(v1alpha1.NewConfig())

	require.NoError(t, err)
}

func TestValidate_EmptyClusterName(t *testing.T) {
	t.Parallel()

	config := v1alpha1.NewConfig()
	config.Spec.Cluster.Name = ""

	err := v1alpha1.Validate(config)

	require.ErrorIs(t, err, v1alpha1.ErrClusterNameEmpty)
}

func TestValidate_NonPositiveTimeout(t *testing.T) {
	t.Parallel()

	config := v1alpha1.NewConfig()
	config.Spec.Mesh.ReadyTimeout.Duration = 0

	err := v1alpha1.Validate(config)

	require.ErrorIs(t, err, v1alpha1.ErrTimeoutNotPositive)
	assert.Contains(t, err.Error(), "mesh")
}

func TestValidate_EmptyNamespace(t *testing.T) {
	t.Parallel()

	config := v1alpha1.NewConfig()
	config.Spec.Database.Namespace = ""

	err := v1alpha1.Validate(config)

	require.ErrorIs(t, err, v1alpha1.ErrNamespaceEmpty)
	assert.Contains(t, err.Error(), "database")
}
