package mongodbinstaller

import (
	"context"
	"fmt"
	"time"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	"github.com/devlab-sh/devlab/pkg/client/helm"
	"github.com/devlab-sh/devlab/pkg/k8s"
	"k8s.io/client-go/kubernetes"
)

const mongodbRepoName = "bitnami"

// MongoDBInstaller installs or upgrades a standalone MongoDB release for
// application development. Credentials come from the database spec; they are
// throwaway values for a local cluster, not production secrets.
type MongoDBInstaller struct {
	client    helm.Interface
	clientset kubernetes.Interface
	spec      v1alpha1.DatabaseSpec
	timeout   time.Duration
}

// NewMongoDBInstaller creates a new MongoDB installer instance.
func NewMongoDBInstaller(
	client helm.Interface,
	clientset kubernetes.Interface,
	spec v1alpha1.DatabaseSpec,
	timeout time.Duration,
) *MongoDBInstaller {
	return &MongoDBInstaller{
		client:    client,
		clientset: clientset,
		spec:      spec,
		timeout:   timeout,
	}
}

// Install installs or upgrades MongoDB via its Helm chart. The target
// namespace is created first so a re-run against an existing namespace does
// not fail.
func (m *MongoDBInstaller) Install(ctx context.Context) error {
	err := k8s.EnsureNamespace(ctx, m.clientset, m.spec.Namespace)
	if err != nil {
		return fmt.Errorf("failed to ensure namespace %q: %w", m.spec.Namespace, err)
	}

	repoEntry := &helm.RepositoryEntry{Name: mongodbRepoName, URL: m.spec.RepoURL}

	err = m.client.AddRepository(ctx, repoEntry)
	if err != nil {
		return fmt.Errorf("failed to add bitnami repository: %w", err)
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
			"auth.rootPassword": m.spec.RootPassword,
			"auth.username":     m.spec.Username,
			"auth.password":     m.spec.Password,
			"auth.database":     m.spec.Database,
		},
	}

	_, err = m.client.InstallOrUpgradeChart(ctx, chartSpec)
	if err != nil {
		return fmt.Errorf("failed to install mongodb chart: %w", err)
	}

	return nil
}

// Uninstall removes the Helm release for MongoDB.
func (m *MongoDBInstaller) Uninstall(ctx context.Context) error {
	err := m.client.UninstallRelease(ctx, m.spec.ReleaseName, m.spec.Namespace)
	if err != nil {
		return fmt.Errorf("failed to uninstall mongodb release: %w", err)
	}

	return nil
}
