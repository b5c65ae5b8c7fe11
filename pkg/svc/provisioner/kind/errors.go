package kindprovisioner

import "errors"

// ErrClusterNotFound is returned when a named cluster does not exist.
var ErrClusterNotFound = errors.New("cluster not found")
