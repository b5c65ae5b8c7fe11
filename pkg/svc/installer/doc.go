// Package installer defines the contract for component installers that run
// on top of a provisioned cluster.
package installer
