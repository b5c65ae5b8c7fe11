package istioinstaller

import (
	"context"
	"fmt"
	"io"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	"github.com/devlab-sh/devlab/pkg/client/helm"
	"github.com/devlab-sh/devlab/pkg/k8s/readiness"
	"github.com/devlab-sh/devlab/pkg/ui/notify"
	"github.com/devlab-sh/devlab/pkg/ui/timer"
	"k8s.io/client-go/kubernetes"

	k8shelpers "github.com/devlab-sh/devlab/pkg/k8s"
)

const (
	istioRepoName = "istio"

	baseRelease   = "istio-base"
	baseChart     = "istio/base"
	istiodRelease = "istiod"
	istiodChart   = "istio/istiod"

	injectionLabelKey   = "istio-injection"
	injectionLabelValue = "enabled"
)

// ManifestApplier applies a manifest from a local path or URL against the
// cluster. Satisfied by the kubectl client.
type ManifestApplier interface {
	Apply(ctx context.Context, kubeconfig, kubeContext, source string) error
}

// IstioInstaller installs or upgrades the Istio service mesh.
//
// It installs the base chart (CRDs) followed by istiod with the configured
// profile, labels the application namespace for automatic sidecar injection,
// applies the observability add-on manifests in parallel, and finally waits
// for every pod in the mesh namespace to become ready.
type IstioInstaller struct {
	client     helm.Interface
	clientset  kubernetes.Interface
	applier    ManifestApplier
	spec       v1alpha1.MeshSpec
	kubeconfig string
	context    string
	timer      timer.Timer
	out        io.Writer
}

// NewIstioInstaller creates a new Istio installer instance. tmr is the timer
// started by the caller; pass nil to suppress timing output.
func NewIstioInstaller(
	client helm.Interface,
	clientset kubernetes.Interface,
	applier ManifestApplier,
	spec v1alpha1.MeshSpec,
	kubeconfig, kubeContext string,
	tmr timer.Timer,
	out io.Writer,
) *IstioInstaller {
	return &IstioInstaller{
		client:     client,
		clientset:  clientset,
		applier:    applier,
		spec:       spec,
		kubeconfig: kubeconfig,
		context:    kubeContext,
		timer:      tmr,
		out:        out,
	}
}

// Install installs or upgrades Istio via its Helm charts and applies the
// observability add-ons.
func (i *IstioInstaller) Install(ctx context.Context) error {
	err := i.helmInstallOrUpgradeIstio(ctx)
	if err != nil {
		return fmt.Errorf("failed to install istio: %w", err)
	}

	err = i.labelInjectionNamespace(ctx)
	if err != nil {
		return fmt.Errorf("failed to enable sidecar injection: %w", err)
	}

	err = i.applyAddons(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply istio addons: %w", err)
	}

	err = readiness.WaitForPodsReady(
		ctx,
		i.clientset,
		i.spec.Namespace,
		i.spec.ReadyTimeout.Duration,
	)
	if err != nil {
		return fmt.Errorf("istio pods not ready in %q: %w", i.spec.Namespace, err)
	}

	return nil
}

// Uninstall removes the Helm releases for Istio. istiod is removed before the
// base chart so CRDs outlive the workloads that depend on them.
func (i *IstioInstaller) Uninstall(ctx context.Context) error {
	err := i.client.UninstallRelease(ctx, istiodRelease, i.spec.Namespace)
	if err != nil {
		return fmt.Errorf("failed to uninstall istiod release: %w", err)
	}

	err = i.client.UninstallRelease(ctx, baseRelease, i.spec.Namespace)
	if err != nil {
		return fmt.Errorf("failed to uninstall istio-base release: %w", err)
	}

	return nil
}

func (i *IstioInstaller) helmInstallOrUpgradeIstio(ctx context.Context) error {
	repoEntry := &helm.RepositoryEntry{Name: istioRepoName, URL: i.spec.RepoURL}

	err := i.client.AddRepository(ctx, repoEntry)
	if err != nil {
		return fmt.Errorf("failed to add istio repository: %w", err)
	}

	baseSpec := &helm.ChartSpec{
		ReleaseName:     baseRelease,
		ChartName:       baseChart,
		Namespace:       i.spec.Namespace,
		Version:         i.spec.Version,
		RepoURL:         i.spec.RepoURL,
		CreateNamespace: true,
		Wait:            true,
		Timeout:         i.spec.ReadyTimeout.Duration,
	}

	_, err = i.client.InstallOrUpgradeChart(ctx, baseSpec)
	if err != nil {
		return fmt.Errorf("failed to install istio-base chart: %w", err)
	}

	istiodSpec := &helm.ChartSpec{
		ReleaseName: istiodRelease,
		ChartName:   istiodChart,
		Namespace:   i.spec.Namespace,
		Version:     i.spec.Version,
		RepoURL:     i.spec.RepoURL,
		Wait:        true,
		WaitForJobs: true,
		Timeout:     i.spec.ReadyTimeout.Duration,
		SetValues: map[string]string{
			"profile": i.spec.Profile,
		},
	}

	_, err = i.client.InstallOrUpgradeChart(ctx, istiodSpec)
	if err != nil {
		return fmt.Errorf("failed to install istiod chart: %w", err)
	}

	return nil
}

func (i *IstioInstaller) labelInjectionNamespace(ctx context.Context) error {
	labels := map[string]string{injectionLabelKey: injectionLabelValue}

	err := k8shelpers.EnsureNamespaceWithLabels(
		ctx,
		i.clientset,
		i.spec.InjectionNamespace,
		labels,
	)
	if err != nil {
		return fmt.Errorf("label namespace %q: %w", i.spec.InjectionNamespace, err)
	}

	return nil
}

// applyAddons applies the observability add-on manifests in parallel. Each
// manifest is independent, and the pods-ready wait afterwards is the
// synchronization point.
func (i *IstioInstaller) applyAddons(ctx context.Context) error {
	if len(i.spec.Addons) == 0 {
		return nil
	}

	tasks := make([]notify.ProgressTask, 0, len(i.spec.Addons))

	for _, addon := range i.spec.Addons {
		tasks = append(tasks, notify.ProgressTask{
			Name: addon.Name,
			Fn: func(ctx context.Context) error {
				return i.applier.Apply(ctx, i.kubeconfig, i.context, addon.URL)
			},
		})
	}

	group := notify.NewProgressGroup("applying istio addons", "📡", i.out, i.timer)

	err := group.Run(ctx, tasks...)
	if err != nil {
		return fmt.Errorf("apply addon manifests: %w", err)
	}

	return nil
}
