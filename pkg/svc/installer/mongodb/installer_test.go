package mongodbinstaller_test

import (
	"context"
	"testing"
	"time"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	"github.com/devlab-sh/devlab/pkg/client/helm"
	mongodbinstaller "github.com/devlab-sh/devlab/pkg/svc/installer/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func newInstallerWithDefaults(
	t *testing.T,
	clientset *fake.Clientset,
) (*mongodbinstaller.MongoDBInstaller, *helm.MockInterface) {
	t.Helper()

	client := helm.NewMockInterface(t)
	spec := v1alpha1.NewConfig().Spec.Database

	installer := mongodbinstaller.NewMongoDBInstaller(client, clientset, spec, 5*time.Minute)

	return installer, client
}

func TestInstall(t *testing.T) {
	t.Parallel()

	clientset := fake.NewSimpleClientset()
	installer, client := newInstallerWithDefaults(t, clientset)

	client.EXPECT().
		AddRepository(mock.Anything, mock.MatchedBy(func(entry *helm.RepositoryEntry) bool {
			return entry.Name == "bitnami" && entry.URL == v1alpha1.DefaultDatabaseRepoURL
		})).
		Return(nil).
		Once()

	client.EXPECT().
		InstallOrUpgradeChart(mock.Anything, mock.MatchedBy(func(spec *helm.ChartSpec) bool {
			return spec.ReleaseName == "mongodb" &&
				spec.ChartName == "bitnami/mongodb" &&
				spec.Namespace == "database" &&
				spec.Wait
		})).
		Return(&helm.ReleaseInfo{}, nil).
		Once()

	err := installer.Install(context.Background())

	require.NoError(t, err)

	// The namespace is ensured before the chart lands in it.
	_, err = clientset.CoreV1().Namespaces().Get(
		context.Background(), "database", metav1.GetOptions{},
	)
	require.NoError(t, err)
}

func TestInstall_CredentialValues(t *testing.T) {
	t.Parallel()

	installer, client := newInstallerWithDefaults(t, fake.NewSimpleClientset())

	client.EXPECT().AddRepository(mock.Anything, mock.Anything).Return(nil).Once()

	var values map[string]string

	client.EXPECT().
		InstallOrUpgradeChart(mock.Anything, mock.Anything).
		Run(func(_ context.Context, spec *helm.ChartSpec) {
			values = spec.SetValues
		}).
		Return(&helm.ReleaseInfo{}, nil).
		Once()

	err := installer.Install(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"auth.rootPassword": "devlab-root",
		"auth.username":     "appuser",
		"auth.password":     "apppass",
		"auth.database":     "appdb",
	}, values)
}

func TestInstall_RepositoryError(t *testing.T) {
	t.Parallel()

	installer, client := newInstallerWithDefaults(t, fake.NewSimpleClientset())

	client.EXPECT().AddRepository(mock.Anything, mock.Anything).Return(assert.AnError).Once()

	err := installer.Install(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add bitnami repository")
	require.ErrorIs(t, err, assert.AnError)
}

func TestInstall_ChartError(t *testing.T) {
	t.Parallel()

	installer, client := newInstallerWithDefaults(t, fake.NewSimpleClientset())

	client.EXPECT().AddRepository(mock.Anything, mock.Anything).Return(nil).Once()
	client.EXPECT().
		InstallOrUpgradeChart(mock.Anything, mock.Anything).
		Return(nil, assert.AnError).
		Once()

	err := installer.Install(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install mongodb chart")
}

func TestUninstall(t *testing.T) {
	t.Parallel()

	installer, client := newInstallerWithDefaults(t, fake.NewSimpleClientset())

	client.EXPECT().UninstallRelease(mock.Anything, "mongodb", "database").Return(nil).Once()

	err := installer.Uninstall(context.Background())

	require.NoError(t, err)
}
