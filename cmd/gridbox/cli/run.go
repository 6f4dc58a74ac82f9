package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridbox/gridbox/internal/container"
	"github.com/gridbox/gridbox/internal/log"
	"github.com/gridbox/gridbox/internal/session"
	"github.com/gridbox/gridbox/internal/webdriver"
	"github.com/spf13/cobra"
)

var (
	browserFlag string
	imageFlag   string
	portFlag    int
	vncPortFlag int
	videoFlag   string
	waitFlag    time.Duration
	keepVolumes bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a browser session and print its WebDriver URL",
	Long: `Start a browser container, wait until its WebDriver endpoint accepts
sessions, and print the connection URL. The session runs until Ctrl+C,
then everything it created is torn down.

Examples:
  # Chrome with defaults
  gridbox run

  # Firefox with a pinned image
  gridbox run --browser firefox --image selenium/standalone-firefox:4.20.0

  # Record the session to ./runs/demo.mp4
  gridbox run --video runs/demo.mp4`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&browserFlag, "browser", "chrome", "browser family (chrome, firefox)")
	runCmd.Flags().StringVar(&imageFlag, "image", "", "browser image override")
	runCmd.Flags().IntVar(&portFlag, "port", session.DefaultPort, "WebDriver port inside the container")
	runCmd.Flags().IntVar(&vncPortFlag, "vnc-port", session.DefaultVNCPort, "VNC port inside the container")
	runCmd.Flags().StringVar(&videoFlag, "video", "", "record the session to this path")
	runCmd.Flags().DurationVar(&waitFlag, "wait", 0, "readiness timeout (default from config)")
	runCmd.Flags().BoolVar(&keepVolumes, "keep-volumes", false, "keep anonymous volumes after stop")
}

func runSession(cmd *cobra.Command, args []string) error {
	engine, err := container.NewDockerEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := engine.Ping(ctx); err != nil {
		return err
	}

	readinessTimeout := waitFlag
	if readinessTimeout <= 0 {
		readinessTimeout = globalCfg.ReadinessTimeout()
	}

	caps := webdriver.Capabilities{"browserName": browserFlag}
	sess, err := session.New(engine, caps, session.Options{
		Image:            imageFlag,
		Port:             portFlag,
		VNCPort:          vncPortFlag,
		ReadinessTimeout: readinessTimeout,
		VideoImage:       globalCfg.VideoImage,
		KeepVolumes:      keepVolumes,
	})
	if err != nil {
		return err
	}

	if videoFlag != "" || cmd.Flags().Changed("video") {
		if err := sess.WithVideo(videoFlag); err != nil {
			return err
		}
	}

	if err := sess.Start(ctx); err != nil {
		return err
	}

	// From here on, teardown must run no matter how we exit.
	stopCtx, cancelStop := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancelStop()
	defer func() {
		if err := sess.Stop(stopCtx); err != nil {
			log.Warn("session teardown incomplete", "session", sess.ID(), "error", err)
		}
	}()

	driver, err := sess.Driver(ctx)
	if err != nil {
		return err
	}
	defer func() {
		quitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = driver.Quit(quitCtx)
	}()

	url, err := sess.ConnectionURL(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Session %s ready\n", sess.ID())
	fmt.Printf("  WebDriver: %s\n", url)
	if vnc, err := sess.VNCAddress(ctx); err == nil {
		fmt.Printf("  VNC:       %s\n", vnc)
	}
	fmt.Println("Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	return nil
}
