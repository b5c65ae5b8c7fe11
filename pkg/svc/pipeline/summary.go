package pipeline

import (
	"fmt"
	"io"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	"github.com/devlab-sh/devlab/pkg/ui/notify"
)

// PrintResults renders the outcome of every step, including skipped ones.
func PrintResults(writer io.Writer, results []Result) {
	for _, result := range results {
		switch result.Status {
		case StatusSucceeded:
			notify.Successf(writer, "%s (%s)", result.Name, result.Duration.Round(timePrecision))
		case StatusFailed:
			notify.Errorf(writer, "%s: %v", result.Name, result.Err)
		case StatusSkipped:
			notify.Warningf(writer, "%s skipped", result.Name)
		}
	}
}

// PrintNextSteps renders the post-bring-up hints: how to inspect the cluster,
// reach the dashboards, and connect to the database.
func PrintNextSteps(writer io.Writer, config *v1alpha1.Config) {
	notify.Titlef(writer, "🧭", "Next steps")

	notify.Infof(writer, "inspect workloads:\n  kubectl get pods -A")

	notify.Infof(
		writer,
		"open the Kiali dashboard:\n  kubectl port-forward -n %s svc/kiali 20001:20001",
		config.Spec.Mesh.Namespace,
	)

	notify.Infof(
		writer,
		"open Grafana:\n  kubectl port-forward -n %s svc/grafana 3000:3000",
		config.Spec.Mesh.Namespace,
	)

	notify.Infof(
		writer,
		"connect to MongoDB:\n  %s",
		MongoConnectionString(config.Spec.Database),
	)

	notify.Infof(
		writer,
		"deploy an application into the %q namespace to get automatic sidecar injection",
		config.Spec.Mesh.InjectionNamespace,
	)
}

// MongoConnectionString builds the in-cluster connection string for the
// provisioned MongoDB release.
func MongoConnectionString(database v1alpha1.DatabaseSpec) string {
	return fmt.Sprintf(
		"mongodb://%s:%s@%s.%s.svc.cluster.local:27017/%s",
		database.Username,
		database.Password,
		database.ReleaseName,
		database.Namespace,
		database.Database,
	)
}
