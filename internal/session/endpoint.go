package session

import (
	"context"
	"fmt"
)

// wdHubSuffix is the command-executor path on Selenium standalone images.
const wdHubSuffix = "/wd/hub"

// ConnectionURL returns the WebDriver endpoint for the running session.
// The port is the one the engine actually published for the configured
// WebDriver port, which differs from it whenever the engine assigns
// host ports dynamically.
func (s *Session) ConnectionURL(ctx context.Context) (string, error) {
	if s.state != StateRunning {
		return "", fmt.Errorf("session is %s, not running", s.state)
	}

	hostPort, err := s.engine.PortBinding(ctx, s.containerID, s.opts.Port)
	if err != nil {
		return "", fmt.Errorf("resolving published port: %w", err)
	}

	return fmt.Sprintf("http://%s:%d%s", s.engine.HostAddress(), hostPort, wdHubSuffix), nil
}

// VNCAddress returns the published host address of the debug display
// port, for attaching a viewer to a running session.
func (s *Session) VNCAddress(ctx context.Context) (string, error) {
	if s.state != StateRunning {
		return "", fmt.Errorf("session is %s, not running", s.state)
	}

	hostPort, err := s.engine.PortBinding(ctx, s.containerID, s.opts.VNCPort)
	if err != nil {
		return "", fmt.Errorf("resolving published port: %w", err)
	}

	return fmt.Sprintf("%s:%d", s.engine.HostAddress(), hostPort), nil
}
