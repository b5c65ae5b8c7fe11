// Package k8s provides Kubernetes client construction and small cluster
// mutation helpers shared by the provisioner and installers.
package k8s
