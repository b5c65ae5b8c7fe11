// Package monitoringinstaller installs the kube-prometheus-stack monitoring
// release with Grafana enabled.
package monitoringinstaller
