package monitoringinstaller

import (
	"context"
	"fmt"
	"time"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	"github.com/devlab-sh/devlab/pkg/client/helm"
	"github.com/devlab-sh/devlab/pkg/k8s"
	"k8s.io/client-go/kubernetes"
)

const monitoringRepoName = "prometheus-community"

// MonitoringInstaller installs or upgrades the kube-prometheus-stack release.
//
// Grafana is enabled explicitly, and the Prometheus ServiceMonitor selector is
// opened up so monitors from any Helm release (the application's included)
// are scraped, not just those belonging to this release.
type MonitoringInstaller struct {
	client    helm.Interface
	clientset kubernetes.Interface
	spec      v1alpha1.MonitoringSpec
	timeout   time.Duration
}

// NewMonitoringInstaller creates a new monitoring installer instance.
func NewMonitoringInstaller(
	client helm.Interface,
	clientset kubernetes.Interface,
	spec v1alpha1.MonitoringSpec,
	timeout time.Duration,
) *MonitoringInstaller {
	return &MonitoringInstaller{
		client:    client,
		clientset: clientset,
		spec:      spec,
		timeout:   timeout,
	}
}

// Install installs or upgrades kube-prometheus-stack via its Helm chart.
func (m *MonitoringInstaller) Install(ctx context.Context) error {
	err := k8s.EnsureNamespace(ctx, m.clientset, m.spec.Namespace)
	if err != nil {
		return fmt.Errorf("failed to ensure namespace %q: %w", m.spec.Namespace, err)
	}

	repoEntry := &helm.RepositoryEntry{Name: monitoringRepoName, URL: m.spec.RepoURL}

	err = m.client.AddRepository(ctx, repoEntry)
	if err != nil {
		return fmt.Errorf("failed to add prometheus-community repository: %w", err)
	}

	chartSpec := &helm.ChartSpec{
		ReleaseName: m.spec.ReleaseName,
		ChartName:   m.spec.ChartName,
		Namespace:   m.spec.Namespace,
		RepoURL:     m.spec.RepoURL,
		Wait:        true,
		WaitForJobs: true,
		Timeout:     m.timeout,
		SetValues: map[string]string{
			"grafana.enabled": "true",
			"prometheus.prometheusSpec.serviceMonitorSelectorNilUsesHelmValues": "false",
		},
	}

	_, err = m.client.InstallOrUpgradeChart(ctx, chartSpec)
	if err != nil {
		return fmt.Errorf("failed to install kube-prometheus-stack chart: %w", err)
	}

	return nil
}

// Uninstall removes the Helm release for the monitoring stack.
func (m *MonitoringInstaller) Uninstall(ctx context.Context) error {
	err := m.client.UninstallRelease(ctx, m.spec.ReleaseName, m.spec.Namespace)
	if err != nil {
		return fmt.Errorf("failed to uninstall monitoring release: %w", err)
	}

	return nil
}
