package container

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	dockercontainer "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/gridbox/gridbox/internal/log"
)

// SessionLabel marks containers created by gridbox so listing and
// cleanup never touch foreign containers.
const SessionLabel = "gridbox.session"

// DockerEngine implements Engine using the Docker API.
type DockerEngine struct {
	cli *client.Client
}

// NewDockerEngine creates a Docker-backed engine from the environment.
func NewDockerEngine() (*DockerEngine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	return &DockerEngine{cli: cli}, nil
}

// Ping verifies the Docker daemon is accessible.
func (e *DockerEngine) Ping(ctx context.Context) error {
	_, err := e.cli.Ping(ctx)
	if err != nil {
		return fmt.Errorf("docker daemon not accessible: %w", err)
	}
	return nil
}

// CreateContainer creates a new Docker container.
func (e *DockerEngine) CreateContainer(ctx context.Context, cfg Config) (string, error) {
	// Pull image if not present
	if err := e.ensureImage(ctx, cfg.Image); err != nil {
		return "", err
	}

	// Convert mounts
	binds := make([]string, 0, len(cfg.Mounts))
	for _, m := range cfg.Mounts {
		bind := m.Source + ":" + m.Target
		if m.ReadOnly {
			bind += ":ro"
		}
		binds = append(binds, bind)
	}

	// Publish exposed ports to engine-assigned host ports
	var exposedPorts nat.PortSet
	var portBindings nat.PortMap
	if len(cfg.ExposedPorts) > 0 {
		exposedPorts = make(nat.PortSet)
		portBindings = make(nat.PortMap)
		for _, containerPort := range cfg.ExposedPorts {
			port := nat.Port(fmt.Sprintf("%d/tcp", containerPort))
			exposedPorts[port] = struct{}{}
			portBindings[port] = []nat.PortBinding{{
				HostPort: "", // Let Docker assign a random port
			}}
		}
	}

	// Join the session network with the container name as alias, so the
	// recorder can address the primary by name or short id.
	var networkingConfig *network.NetworkingConfig
	hostConfig := &dockercontainer.HostConfig{
		Binds:        binds,
		PortBindings: portBindings,
	}
	if cfg.NetworkName != "" {
		hostConfig.NetworkMode = dockercontainer.NetworkMode(cfg.NetworkName)
		networkingConfig = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				cfg.NetworkName: {
					Aliases: []string{cfg.Name},
				},
			},
		}
	}

	resp, err := e.cli.ContainerCreate(ctx,
		&dockercontainer.Config{
			Image:        cfg.Image,
			Env:          cfg.Env,
			Labels:       cfg.Labels,
			ExposedPorts: exposedPorts,
		},
		hostConfig,
		networkingConfig,
		nil, // platform
		cfg.Name,
	)
	if err != nil {
		return "", fmt.Errorf("creating container: %w", err)
	}

	return resp.ID, nil
}

// StartContainer starts an existing container.
func (e *DockerEngine) StartContainer(ctx context.Context, id string) error {
	if err := e.cli.ContainerStart(ctx, id, dockercontainer.StartOptions{}); err != nil {
		return fmt.Errorf("starting container: %w", err)
	}
	return nil
}

// StopContainer stops a running container.
func (e *DockerEngine) StopContainer(ctx context.Context, id string) error {
	if err := e.cli.ContainerStop(ctx, id, dockercontainer.StopOptions{}); err != nil {
		return fmt.Errorf("stopping container: %w", err)
	}
	return nil
}

// RemoveContainer removes a container.
func (e *DockerEngine) RemoveContainer(ctx context.Context, id string, removeVolumes bool) error {
	if err := e.cli.ContainerRemove(ctx, id, dockercontainer.RemoveOptions{
		Force:         true,
		RemoveVolumes: removeVolumes,
	}); err != nil {
		// Ignore "not found" errors - container may have already been removed
		if errdefs.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("removing container: %w", err)
	}
	return nil
}

// PortBinding returns the host port Docker published for a container port.
func (e *DockerEngine) PortBinding(ctx context.Context, id string, containerPort int) (int, error) {
	inspect, err := e.cli.ContainerInspect(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("inspecting container: %w", err)
	}

	port := nat.Port(fmt.Sprintf("%d/tcp", containerPort))
	bindings := inspect.NetworkSettings.Ports[port]
	if len(bindings) == 0 {
		return 0, fmt.Errorf("port %d is not published (container not started?)", containerPort)
	}
	hostPort, err := strconv.Atoi(bindings[0].HostPort)
	if err != nil {
		return 0, fmt.Errorf("parsing published port %q: %w", bindings[0].HostPort, err)
	}
	return hostPort, nil
}

// ShortID returns the short identity of a container.
func (e *DockerEngine) ShortID(ctx context.Context, id string) (string, error) {
	inspect, err := e.cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", fmt.Errorf("inspecting container: %w", err)
	}
	return shortID(inspect.ID), nil
}

// HostAddress returns the address where published ports are reachable.
// A remote DOCKER_HOST moves them to that host; otherwise localhost.
func (e *DockerEngine) HostAddress() string {
	return hostAddress(os.Getenv("DOCKER_HOST"))
}

// CreateNetwork creates a Docker network for inter-container communication.
// Returns the network ID.
func (e *DockerEngine) CreateNetwork(ctx context.Context, name string) (string, error) {
	resp, err := e.cli.NetworkCreate(ctx, name, network.CreateOptions{
		Driver: "bridge",
	})
	if err != nil {
		return "", fmt.Errorf("creating network: %w", err)
	}
	return resp.ID, nil
}

// RemoveNetwork removes a Docker network by ID.
// Best-effort: does not fail if the network doesn't exist or has active endpoints.
func (e *DockerEngine) RemoveNetwork(ctx context.Context, networkID string) error {
	err := e.cli.NetworkRemove(ctx, networkID)
	if err != nil {
		// Ignore "not found" and "conflict" errors - network may already be
		// removed or may have active endpoints during cleanup
		if errdefs.IsNotFound(err) || errdefs.IsConflict(err) {
			return nil
		}
		// Docker doesn't always return a proper conflict error code for active
		// endpoints. Check the error message as a fallback.
		if strings.Contains(err.Error(), "active endpoints") {
			return nil
		}
		return fmt.Errorf("removing network: %w", err)
	}
	return nil
}

// ListContainers returns all gridbox containers (running + stopped).
func (e *DockerEngine) ListContainers(ctx context.Context) ([]Info, error) {
	containers, err := e.cli.ContainerList(ctx, dockercontainer.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", SessionLabel)),
	})
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	var result []Info
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		result = append(result, Info{
			ID:      shortID(c.ID),
			Name:    name,
			Image:   c.Image,
			Status:  c.State,
			Created: time.Unix(c.Created, 0),
		})
	}
	return result, nil
}

// Close releases Docker client resources.
func (e *DockerEngine) Close() error {
	return e.cli.Close()
}

// ensureImage pulls an image if it doesn't exist locally.
func (e *DockerEngine) ensureImage(ctx context.Context, imageName string) error {
	_, err := e.cli.ImageInspect(ctx, imageName)
	if err == nil {
		return nil // Image exists
	}
	if !errdefs.IsNotFound(err) {
		return fmt.Errorf("inspecting image %s: %w", imageName, err)
	}

	log.Info("pulling image", "image", imageName)
	reader, err := e.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pulling image %s: %w", imageName, err)
	}
	defer reader.Close()

	// Drain the reader to complete the pull (discard JSON progress output)
	_, _ = io.Copy(io.Discard, reader)
	return nil
}

// shortID truncates a full container ID to Docker's short form.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// hostAddress derives the host-reachable address from a DOCKER_HOST value.
func hostAddress(dockerHost string) string {
	if dockerHost == "" {
		return "localhost"
	}
	u, err := url.Parse(dockerHost)
	if err != nil {
		return "localhost"
	}
	switch u.Scheme {
	case "tcp", "http", "https":
		if h := u.Hostname(); h != "" {
			return h
		}
	}
	// unix:// and npipe:// sockets publish on the local host
	return "localhost"
}
