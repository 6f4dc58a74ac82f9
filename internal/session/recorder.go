package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gridbox/gridbox/internal/container"
	"github.com/gridbox/gridbox/internal/id"
)

// videoMountTarget is where the recorder image writes its capture.
const videoMountTarget = "/videos"

// Recorder is the session's optional recording attachment. It captures
// the primary container's display into a file under its output
// directory. The recorder joins the session's private network and
// resolves its target by the primary's short identity, so it starts
// strictly after the primary and stops strictly before it.
type Recorder struct {
	image     string
	outputDir string
	fileName  string // empty = recorder's default name

	// bound at attach time, once the primary is running
	targetShortID string
	networkName   string

	containerID string
}

// newRecorder builds a recorder from the caller's target path.
func newRecorder(videoImage, path string) (*Recorder, error) {
	dir, name, err := splitVideoPath(path)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		image:     videoImage,
		outputDir: dir,
		fileName:  name,
	}, nil
}

// splitVideoPath derives the recording's directory and filename from a
// caller-supplied target path. A terminal path component names the
// file; a trailing separator, ".", or the empty path leaves naming to
// the recorder. Relative and empty directories resolve to the process
// working directory so the capture lands somewhere predictable.
func splitVideoPath(path string) (dir, name string, err error) {
	if path == "" {
		dir, err = os.Getwd()
		return dir, "", err
	}

	if !strings.HasSuffix(path, string(filepath.Separator)) {
		base := filepath.Base(path)
		if base != "." && base != ".." && base != string(filepath.Separator) {
			name = base
			path = filepath.Dir(path)
		}
	}

	dir = filepath.Clean(path)
	if dir == "." {
		dir, err = os.Getwd()
		if err != nil {
			return "", "", err
		}
	} else if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		dir = filepath.Join(cwd, dir)
	}
	return dir, name, nil
}

// attach binds the recorder to its capture target and network. Called
// once the primary container is running and its short identity known.
func (r *Recorder) attach(targetShortID, networkName string) {
	r.targetShortID = targetShortID
	r.networkName = networkName
}

// start creates and starts the recorder container. attach must have
// been called first.
func (r *Recorder) start(ctx context.Context, engine container.Engine, sessionID string) error {
	if r.targetShortID == "" || r.networkName == "" {
		return fmt.Errorf("recorder started before being attached to a target")
	}

	env := []string{
		"DISPLAY_CONTAINER_NAME=" + r.targetShortID,
	}
	if r.fileName != "" {
		env = append(env, "FILE_NAME="+r.fileName)
	}

	containerID, err := engine.CreateContainer(ctx, container.Config{
		Name:        id.Generate("video"),
		Image:       r.image,
		Env:         env,
		NetworkName: r.networkName,
		Mounts: []container.MountConfig{
			{Source: r.outputDir, Target: videoMountTarget},
		},
		Labels: map[string]string{
			container.SessionLabel: sessionID,
			"gridbox.role":         "video",
		},
	})
	if err != nil {
		return fmt.Errorf("creating recorder container: %w", err)
	}
	r.containerID = containerID

	if err := engine.StartContainer(ctx, containerID); err != nil {
		return fmt.Errorf("starting recorder container: %w", err)
	}
	return nil
}

// stop halts the recorder and removes its container. The stop must
// complete before the capture target goes away, so this blocks.
func (r *Recorder) stop(ctx context.Context, engine container.Engine, removeVolumes bool) error {
	if r.containerID == "" {
		return nil
	}
	if err := engine.StopContainer(ctx, r.containerID); err != nil {
		return fmt.Errorf("stopping recorder: %w", err)
	}
	if err := engine.RemoveContainer(ctx, r.containerID, removeVolumes); err != nil {
		return fmt.Errorf("removing recorder: %w", err)
	}
	return nil
}

// OutputDir returns where the capture lands.
func (r *Recorder) OutputDir() string {
	return r.outputDir
}

// FileName returns the configured capture filename, empty when the
// recorder's default applies.
func (r *Recorder) FileName() string {
	return r.fileName
}
