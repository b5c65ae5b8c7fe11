// Package readiness provides Kubernetes resource readiness polling utilities.
//
// It offers a generic polling mechanism (PollForReadiness) plus blocking
// waits for nodes, namespace pods, and the API server, each bounded by a
// deadline after which ErrTimeoutExceeded is returned.
package readiness
