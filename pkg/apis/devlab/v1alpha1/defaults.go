package v1alpha1

import (
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Default names and values reproducing the fixed environment the tool
// originally provisioned. All of them are overridable via devlab.yaml,
// DEVLAB_* environment variables, or flags.
const (
	DefaultClusterName = "devlab"
	DefaultScratchRoot = "/tmp/devlab"

	DefaultMeshNamespace      = "istio-system"
	DefaultMeshProfile        = "demo"
	DefaultInjectionNamespace = "default"
	DefaultMeshRepoURL        = "https://istio-release.storage.googleapis.com/charts"

	DefaultDatabaseNamespace = "database"
	DefaultDatabaseRelease   = "mongodb"
	DefaultDatabaseChart     = "bitnami/mongodb"
	DefaultDatabaseRepoURL   = "https://charts.bitnami.com/bitnami"

	DefaultMonitoringNamespace = "monitoring"
	DefaultMonitoringRelease   = "monitoring"
	DefaultMonitoringChart     = "prometheus-community/kube-prometheus-stack"
	DefaultMonitoringRepoURL   = "https://prometheus-community.github.io/helm-charts"

	defaultClusterReadyTimeout = 5 * time.Minute
	defaultMeshReadyTimeout    = 10 * time.Minute
)

// addonManifestBase points at the Istio samples for the observability
// add-ons. The release branch is pinned so the manifests match the installed
// control-plane minor version.
const addonManifestBase = "https://raw.githubusercontent.com/istio/istio/release-1.24/samples/addons"

// DefaultAddons returns the four observability add-ons applied after the mesh
// control plane: metrics collection, dependency graph UI, dashboarding, and
// distributed tracing.
func DefaultAddons() []Addon {
	return []Addon{
		{Name: "prometheus", URL: addonManifestBase + "/prometheus.yaml"},
		{Name: "kiali", URL: addonManifestBase + "/kiali.yaml"},
		{Name: "grafana", URL: addonManifestBase + "/grafana.yaml"},
		{Name: "jaeger", URL: addonManifestBase + "/jaeger.yaml"},
	}
}

// NewConfig returns a Config with type metadata set and defaults applied.
func NewConfig() *Config {
	config := &Config{
		TypeMeta: metav1.TypeMeta{
			Kind:       Kind,
			APIVersion: APIVersion,
		},
	}

	SetDefaults(config)

	return config
}

// SetDefaults applies default values to a Config.
//
//nolint:cyclop,funlen // one branch per defaultable field
func SetDefaults(c *Config) {
	if c == nil {
		return
	}

	if c.Metadata.Name == "" {
		c.Metadata.Name = DefaultClusterName
	}

	if c.Spec.Connection.Kubeconfig == "" {
		c.Spec.Connection.Kubeconfig = "~/.kube/config"
	}

	if c.Spec.Cluster.Name == "" {
		c.Spec.Cluster.Name = DefaultClusterName
	}

	if c.Spec.Cluster.ScratchRoot == "" {
		c.Spec.Cluster.ScratchRoot = DefaultScratchRoot
	}

	if c.Spec.Cluster.HTTPHostPort == 0 {
		c.Spec.Cluster.HTTPHostPort = 8080
	}

	if c.Spec.Cluster.HTTPSHostPort == 0 {
		c.Spec.Cluster.HTTPSHostPort = 8443
	}

	if c.Spec.Cluster.AppNodePort == 0 {
		c.Spec.Cluster.AppNodePort = 30080
	}

	if c.Spec.Cluster.WorkerReservedMemory == "" {
		c.Spec.Cluster.WorkerReservedMemory = "512Mi"
	}

	if c.Spec.Cluster.ReadyTimeout.Duration == 0 {
		c.Spec.Cluster.ReadyTimeout = metav1.Duration{Duration: defaultClusterReadyTimeout}
	}

	if c.Spec.Mesh.Namespace == "" {
		c.Spec.Mesh.Namespace = DefaultMeshNamespace
	}

	if c.Spec.Mesh.Profile == "" {
		c.Spec.Mesh.Profile = DefaultMeshProfile
	}

	if c.Spec.Mesh.InjectionNamespace == "" {
		c.Spec.Mesh.InjectionNamespace = DefaultInjectionNamespace
	}

	if c.Spec.Mesh.RepoURL == "" {
		c.Spec.Mesh.RepoURL = DefaultMeshRepoURL
	}

	if len(c.Spec.Mesh.Addons) == 0 {
		c.Spec.Mesh.Addons = DefaultAddons()
	}

	if c.Spec.Mesh.ReadyTimeout.Duration == 0 {
		c.Spec.Mesh.ReadyTimeout = metav1.Duration{Duration: defaultMeshReadyTimeout}
	}

	if c.Spec.Database.Namespace == "" {
		c.Spec.Database.Namespace = DefaultDatabaseNamespace
	}

	if c.Spec.Database.ReleaseName == "" {
		c.Spec.Database.ReleaseName = DefaultDatabaseRelease
	}

	if c.Spec.Database.ChartName == "" {
		c.Spec.Database.ChartName = DefaultDatabaseChart
	}

	if c.Spec.Database.RepoURL == "" {
		c.Spec.Database.RepoURL = DefaultDatabaseRepoURL
	}

	if c.Spec.Database.RootPassword == "" {
		c.Spec.Database.RootPassword = "devlab-root"
	}

	if c.Spec.Database.Username == "" {
		c.Spec.Database.Username = "appuser"
	}

	if c.Spec.Database.Password == "" {
		c.Spec.Database.Password = "apppass"
	}

	if c.Spec.Database.Database == "" {
		c.Spec.Database.Database = "appdb"
	}

	if c.Spec.Monitoring.Namespace == "" {
		c.Spec.Monitoring.Namespace = DefaultMonitoringNamespace
	}

	if c.Spec.Monitoring.ReleaseName == "" {
		c.Spec.Monitoring.ReleaseName = DefaultMonitoringRelease
	}

	if c.Spec.Monitoring.ChartName == "" {
		c.Spec.Monitoring.ChartName = DefaultMonitoringChart
	}

	if c.Spec.Monitoring.RepoURL == "" {
		c.Spec.Monitoring.RepoURL = DefaultMonitoringRepoURL
	}
}
