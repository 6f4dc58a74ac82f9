// Package session orchestrates the lifecycle of one ephemeral browser
// container and, when video is requested, a paired recorder container
// that joins it on a private network.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gridbox/gridbox/internal/container"
	"github.com/gridbox/gridbox/internal/id"
	"github.com/gridbox/gridbox/internal/image"
	"github.com/gridbox/gridbox/internal/log"
	"github.com/gridbox/gridbox/internal/webdriver"
)

// State is a session lifecycle state.
type State string

const (
	StateConfigured State = "configured"
	StateStarting   State = "starting"
	StateRunning    State = "running"
	StateStopping   State = "stopping"
	StateStopped    State = "stopped"
)

// Default ports for Selenium standalone images.
const (
	DefaultPort    = 4444
	DefaultVNCPort = 5900
)

// Options configures a session beyond its capability set.
type Options struct {
	// Image overrides the browser image selected from the capability set.
	Image string

	// Port is the WebDriver port inside the container (default 4444).
	Port int

	// VNCPort is the debug display port inside the container (default 5900).
	VNCPort int

	// ReadinessTimeout bounds how long Driver waits for the endpoint
	// to accept sessions (default 60s).
	ReadinessTimeout time.Duration

	// VideoImage overrides the recorder container image.
	VideoImage string

	// KeepVolumes skips anonymous volume removal on Stop.
	KeepVolumes bool
}

// network is the session's optional private network slot.
type network struct {
	id   string
	name string
}

// Session is one orchestrated browser run. It owns its primary
// container exclusively, plus at most one recorder and at most one
// network. It is not safe for concurrent Start/Stop.
type Session struct {
	engine container.Engine
	caps   webdriver.Capabilities
	opts   Options

	id    string
	image string
	state State

	containerID string
	recorder    *Recorder
	net         *network
}

// New validates configuration and returns a session in StateConfigured.
// Configuration errors (unknown browser family) surface here, before
// any engine call.
func New(engine container.Engine, caps webdriver.Capabilities, opts Options) (*Session, error) {
	img, err := image.Resolve(caps.BrowserName(), opts.Image)
	if err != nil {
		return nil, err
	}

	if opts.Port <= 0 {
		opts.Port = DefaultPort
	}
	if opts.VNCPort <= 0 {
		opts.VNCPort = DefaultVNCPort
	}
	if opts.ReadinessTimeout <= 0 {
		opts.ReadinessTimeout = 60 * time.Second
	}
	if opts.VideoImage == "" {
		opts.VideoImage = image.DefaultVideoImage
	}

	return &Session{
		engine: engine,
		caps:   caps,
		opts:   opts,
		id:     id.Generate("grid"),
		image:  img,
		state:  StateConfigured,
	}, nil
}

// ID returns the session identity, used in container names and labels.
func (s *Session) ID() string {
	return s.id
}

// Image returns the resolved browser image.
func (s *Session) Image() string {
	return s.image
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// WithVideo requests a recording of the session's display. The terminal
// component of path, if any, names the output file; its directory is
// where the recording lands ("." and the empty path mean the current
// working directory). Must be called before Start.
func (s *Session) WithVideo(path string) error {
	if s.state != StateConfigured {
		return fmt.Errorf("video must be requested before start (state %s)", s.state)
	}
	rec, err := newRecorder(s.opts.VideoImage, path)
	if err != nil {
		return err
	}
	s.recorder = rec
	return nil
}

// Start provisions and starts the session's containers. On return the
// session is running and its connection URL resolvable. A session that
// never requested video makes zero network and recorder calls.
func (s *Session) Start(ctx context.Context) error {
	if s.state != StateConfigured {
		return fmt.Errorf("start from state %s", s.state)
	}
	s.state = StateStarting

	// A failed start leaves nothing behind: whatever was already
	// provisioned is reclaimed before the error surfaces.
	fail := func(err error) error {
		if terr := s.teardown(ctx); terr != nil {
			log.Warn("cleanup after failed start incomplete", "session", s.id, "error", terr)
		}
		s.state = StateStopped
		return err
	}

	// The recorder and the primary must see each other, so a private
	// network exists exactly when a recorder does. Both containers are
	// bound to it before either starts.
	var networkName string
	if s.recorder != nil {
		name := uuid.NewString()
		netID, err := s.engine.CreateNetwork(ctx, name)
		if err != nil {
			s.state = StateStopped
			return fmt.Errorf("provisioning session network: %w", err)
		}
		s.net = &network{id: netID, name: name}
		networkName = name
		log.Debug("session network created", "session", s.id, "network", name)
	}

	containerID, err := s.engine.CreateContainer(ctx, container.Config{
		Name:  s.id,
		Image: s.image,
		// Intra-stack calls must not be routed through a test
		// environment's HTTP proxy. Both spellings are set because
		// consumers of proxy configuration disagree on the name.
		Env: []string{
			"no_proxy=localhost",
			"HUB_ENV_no_proxy=localhost",
		},
		ExposedPorts: []int{s.opts.Port, s.opts.VNCPort},
		NetworkName:  networkName,
		Labels: map[string]string{
			container.SessionLabel: s.id,
			"gridbox.role":         "browser",
		},
	})
	if err != nil {
		return fail(fmt.Errorf("creating browser container: %w", err))
	}
	s.containerID = containerID

	if err := s.engine.StartContainer(ctx, containerID); err != nil {
		return fail(fmt.Errorf("starting browser container: %w", err))
	}

	// The recorder resolves its capture target by the primary's short
	// identity at its own startup, so it can only start afterwards.
	if s.recorder != nil {
		shortID, err := s.engine.ShortID(ctx, containerID)
		if err != nil {
			return fail(fmt.Errorf("resolving browser container identity: %w", err))
		}
		s.recorder.attach(shortID, networkName)
		if err := s.recorder.start(ctx, s.engine, s.id); err != nil {
			return fail(err)
		}
	}

	s.state = StateRunning
	log.Info("session running", "session", s.id, "image", s.image)
	return nil
}

// Stop tears the session down in a single best-effort forward pass:
// recorder first (so the capture is flushed), then the primary
// container, then the network. Later steps still run when earlier ones
// fail; the first error is returned.
func (s *Session) Stop(ctx context.Context) error {
	if s.state != StateRunning && s.state != StateStarting {
		return fmt.Errorf("stop from state %s", s.state)
	}
	s.state = StateStopping
	err := s.teardown(ctx)
	s.state = StateStopped
	return err
}

func (s *Session) teardown(ctx context.Context) error {
	var firstErr error

	// Step 1: halt the recorder before its target disappears, or the
	// tail of the capture is lost. Failure here must not block the rest
	// of the pass.
	if s.recorder != nil {
		if err := s.recorder.stop(ctx, s.engine, !s.opts.KeepVolumes); err != nil {
			log.Warn("stopping recorder failed", "session", s.id, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	// Step 2: stop and remove the primary container.
	if s.containerID != "" {
		if err := s.engine.StopContainer(ctx, s.containerID); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
		if err := s.engine.RemoveContainer(ctx, s.containerID, !s.opts.KeepVolumes); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	// Step 3: the network goes last, once both containers are down.
	// Removal is attempted even after a failed primary stop: the engine
	// treats a still-referenced network as a no-op conflict, so trying
	// can only reclaim it, while skipping guarantees a leak.
	if s.net != nil {
		if err := s.engine.RemoveNetwork(ctx, s.net.id); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
		s.net = nil
	}

	return firstErr
}
