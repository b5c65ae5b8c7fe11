// Package istioinstaller installs the Istio service mesh, enables sidecar
// injection on the application namespace, and applies the observability
// add-on manifests.
package istioinstaller
