// Package kindprovisioner provisions the local kind cluster.
//
// It drives kind's own Cobra commands (create, delete, get clusters) through
// a CommandRunner rather than shelling out to a kind binary, and builds the
// two-node topology descriptor consumed by cluster creation.
package kindprovisioner
