// Package v1alpha1 defines the devlab configuration schema.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	Group      = "devlab.sh"
	Version    = "v1alpha1"
	Kind       = "Config"
	APIVersion = Group + "/" + Version
)

// Config represents the desired state of a devlab environment: the local
// cluster plus the components installed on top of it. Every name, namespace,
// credential, and timeout the pipeline uses flows from here, so two
// differently named configs can coexist on one host.
type Config struct {
	metav1.TypeMeta `json:",inline"`
	Metadata        metav1.ObjectMeta `json:"metadata,omitzero"`
	Spec            Spec              `json:"spec,omitzero"`
}

// Spec defines the desired state of a devlab environment.
type Spec struct {
	Connection Connection     `json:"connection,omitzero"`
	Cluster    ClusterSpec    `json:"cluster,omitzero"`
	Mesh       MeshSpec       `json:"mesh,omitzero"`
	Database   DatabaseSpec   `json:"database,omitzero"`
	Monitoring MonitoringSpec `json:"monitoring,omitzero"`
}

// Connection defines how the pipeline reaches the cluster once created.
type Connection struct {
	Kubeconfig string `json:"kubeconfig,omitzero"`
	Context    string `json:"context,omitzero"`
}

// ClusterSpec defines the kind cluster topology knobs.
type ClusterSpec struct {
	Name        string `json:"name,omitzero"`
	ScratchRoot string `json:"scratchRoot,omitzero"`

	// Host ports the control-plane node publishes for ingress-style access.
	HTTPHostPort  int32 `json:"httpHostPort,omitzero"`
	HTTPSHostPort int32 `json:"httpsHostPort,omitzero"`
	// AppNodePort is published 1:1 so NodePort services are reachable from
	// the host without port-forwarding.
	AppNodePort int32 `json:"appNodePort,omitzero"`

	// WorkerReservedMemory is passed to the worker kubelet as
	// system-reserved memory.
	WorkerReservedMemory string `json:"workerReservedMemory,omitzero"`

	ReadyTimeout metav1.Duration `json:"readyTimeout,omitzero"`
}

// Addon is an observability manifest applied after the mesh control plane.
type Addon struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// MeshSpec defines the Istio installation.
type MeshSpec struct {
	Namespace string `json:"namespace,omitzero"`
	// Profile selects the istiod configuration preset (e.g. "demo").
	Profile string `json:"profile,omitzero"`
	// InjectionNamespace is labelled for automatic sidecar injection.
	InjectionNamespace string `json:"injectionNamespace,omitzero"`
	RepoURL            string `json:"repoURL,omitzero"`
	// Version pins the Istio chart version; empty resolves the latest from
	// the repository index.
	Version string  `json:"version,omitzero"`
	Addons  []Addon `json:"addons,omitzero"`

	ReadyTimeout metav1.Duration `json:"readyTimeout,omitzero"`
}

// DatabaseSpec defines the MongoDB release.
type DatabaseSpec struct {
	Namespace   string `json:"namespace,omitzero"`
	ReleaseName string `json:"releaseName,omitzero"`
	ChartName   string `json:"chartName,omitzero"`
	RepoURL     string `json:"repoURL,omitzero"`

	// Development credentials. These are deliberately not sourced from a
	// secret store; devlab provisions throwaway local environments.
	RootPassword string `json:"rootPassword,omitzero"`
	Username     string `json:"username,omitzero"`
	Password     string `json:"password,omitzero"`
	Database     string `json:"database,omitzero"`
}

// MonitoringSpec defines the kube-prometheus-stack release.
type MonitoringSpec struct {
	Namespace   string `json:"namespace,omitzero"`
	ReleaseName string `json:"releaseName,omitzero"`
	ChartName   string `json:"chartName,omitzero"`
	RepoURL     string `json:"repoURL,omitzero"`
}
