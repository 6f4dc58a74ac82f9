// Package container provides the container engine surface gridbox
// drives: create/start/stop containers, published port introspection,
// and per-session networks.
package container

import (
	"context"
	"time"
)

// Engine is the interface for container engine operations. Sessions own
// the objects they create and never touch containers or networks made
// by anything else.
type Engine interface {
	// Ping verifies the engine is accessible.
	Ping(ctx context.Context) error

	// CreateContainer creates a new container without starting it.
	// Returns the container ID.
	CreateContainer(ctx context.Context, cfg Config) (string, error)

	// StartContainer starts an existing container.
	StartContainer(ctx context.Context, id string) error

	// StopContainer stops a running container.
	StopContainer(ctx context.Context, id string) error

	// RemoveContainer removes a container, optionally with its
	// anonymous volumes. Tolerates already-removed containers.
	RemoveContainer(ctx context.Context, id string, removeVolumes bool) error

	// PortBinding returns the host port published for a container port.
	// Call after the container is started; unpublished ports are an error.
	PortBinding(ctx context.Context, id string, containerPort int) (int, error)

	// ShortID returns the short identity of a created container,
	// the form other containers use to address it.
	ShortID(ctx context.Context, id string) (string, error)

	// HostAddress returns the address on which published ports are
	// reachable from this process.
	HostAddress() string

	// CreateNetwork creates a network for inter-container communication.
	// Returns the network ID.
	CreateNetwork(ctx context.Context, name string) (string, error)

	// RemoveNetwork removes a network by ID.
	// Best-effort: does not fail if the network doesn't exist
	// or still has active endpoints.
	RemoveNetwork(ctx context.Context, networkID string) error

	// ListContainers returns all gridbox-labeled containers (running + stopped).
	ListContainers(ctx context.Context) ([]Info, error)

	// Close releases engine resources.
	Close() error
}

// Config holds configuration for creating a container.
type Config struct {
	Name  string
	Image string

	// Env entries in KEY=VALUE form.
	Env []string

	// ExposedPorts are container ports published to engine-assigned
	// host ports.
	ExposedPorts []int

	// NetworkName attaches the container to a named network instead of
	// the default bridge. The container name is registered as an alias.
	NetworkName string

	// Mounts are bind mounts for the container.
	Mounts []MountConfig

	// Labels tag the container for listing and cleanup.
	Labels map[string]string
}

// MountConfig describes a bind mount.
type MountConfig struct {
	Source   string
	Target   string
	ReadOnly bool
}

// Info contains information about a container.
type Info struct {
	ID      string
	Name    string
	Image   string
	Status  string // "running", "exited", "created"
	Created time.Time
}
