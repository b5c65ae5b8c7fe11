// Package docker wraps the Docker engine API client used for preflight
// checks against the local container runtime.
package docker

import (
	"context"
	"errors"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// ErrUnexpectedDockerClientType is returned when the Docker client has an
// unexpected concrete type.
var ErrUnexpectedDockerClientType = errors.New("unexpected docker client type")

// GetDockerClient creates a Docker client using environment configuration.
func GetDockerClient() (client.APIClient, error) {
	dockerClient, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return dockerClient, nil
}

// GetConcreteDockerClient creates a Docker client and returns the concrete
// *client.Client type. This is useful for callers that need the concrete type
// rather than the APIClient interface.
func GetConcreteDockerClient() (*client.Client, error) {
	dockerClient, err := GetDockerClient()
	if err != nil {
		return nil, err
	}

	clientPtr, ok := dockerClient.(*client.Client)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedDockerClientType, dockerClient)
	}

	return clientPtr, nil
}

// Pinger is the subset of the Docker API client used to verify that the
// engine daemon is reachable.
type Pinger interface {
	Ping(ctx context.Context) (types.Ping, error)
}

// CheckEngineReachable pings the Docker daemon and returns an error when it
// cannot be reached. A missing or stopped daemon is indistinguishable here;
// both abort the run.
func CheckEngineReachable(ctx context.Context, pinger Pinger) error {
	_, err := pinger.Ping(ctx)
	if err != nil {
		return fmt.Errorf("docker engine is not reachable: %w", err)
	}

	return nil
}
