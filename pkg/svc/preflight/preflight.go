// Package preflight verifies host prerequisites before any cluster operation
// runs.
//
// Docker and kubectl are hard requirements: the cluster nodes run as Docker
// containers, and the post-install workflow is driven with kubectl. The
// cluster and chart toolchains (kind, helm) that earlier tooling downloaded
// onto the host are embedded as Go libraries, so their checks always pass and
// are reported as builtin.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	dockerclient "github.com/devlab-sh/devlab/pkg/client/docker"
)

// Status describes the outcome of a single prerequisite check.
type Status int

const (
	// StatusOK means the prerequisite is present.
	StatusOK Status = iota
	// StatusFailed means a required prerequisite is missing.
	StatusFailed
	// StatusBuiltin means the tool is provided by an embedded library and
	// needs nothing from the host.
	StatusBuiltin
)

// String returns the display form of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// CheckResult is the outcome of one prerequisite check.
type CheckResult struct {
	Name   string
	Status Status
	Err    error
}

// Check is a single named prerequisite. A nil Fn marks the prerequisite as
// provided by an embedded library.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// ErrPrerequisiteMissing is returned when any required prerequisite fails.
var ErrPrerequisiteMissing = errors.New("required prerequisite missing")

// Checker runs prerequisite checks.
type Checker struct {
	checks []Check
}

// NewChecker creates a Checker with the given checks.
func NewChecker(checks ...Check) *Checker {
	return &Checker{checks: checks}
}

// NewDefaultChecker creates a Checker with the standard devlab prerequisite
// set: Docker engine reachability, kubectl on PATH, and the builtin kind and
// helm libraries.
func NewDefaultChecker(pinger dockerclient.Pinger) *Checker {
	return NewChecker(
		Check{Name: "docker", Fn: func(ctx context.Context) error {
			return dockerclient.CheckEngineReachable(ctx, pinger)
		}},
		Check{Name: "kubectl", Fn: func(_ context.Context) error {
			return checkBinaryOnPath("kubectl")
		}},
		Check{Name: "kind"},
		Check{Name: "helm"},
	)
}

// Run executes all checks and returns their results. The first failed check
// makes the aggregate error non-nil; remaining checks still run so the
// operator sees the full picture.
func (c *Checker) Run(ctx context.Context) ([]CheckResult, error) {
	results := make([]CheckResult, 0, len(c.checks))

	var firstErr error

	for _, check := range c.checks {
		if check.Fn == nil {
			results = append(results, CheckResult{Name: check.Name, Status: StatusBuiltin})

			continue
		}

		err := check.Fn(ctx)
		if err != nil {
			results = append(results, CheckResult{
				Name:   check.Name,
				Status: StatusFailed,
				Err:    err,
			})

			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s: %w", ErrPrerequisiteMissing, check.Name, err)
			}

			continue
		}

		results = append(results, CheckResult{Name: check.Name, Status: StatusOK})
	}

	return results, firstErr
}

// checkBinaryOnPath verifies a binary can be resolved from PATH.
func checkBinaryOnPath(name string) error {
	_, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found on PATH: %w", name, err)
	}

	return nil
}
