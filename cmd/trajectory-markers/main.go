// Package main runs an interactive waypoint authoring session for one arm of a simulated
// dual-arm robot.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/waypoints/archive"
	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/config"
	"go.viam.com/waypoints/dispatcher"
	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/marker"
	"go.viam.com/waypoints/motion/sim"
	"go.viam.com/waypoints/publish"
	"go.viam.com/waypoints/web"
)

const (
	flagConfig = "config"
	flagDebug  = "debug"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:            "trajectory-markers",
		Usage:           "author a trajectory for one arm by dragging an interactive marker",
		ArgsUsage:       "<left|right>",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Action: runAction,
	}
}

// runAction validates the arm side before anything is constructed.
func runAction(c *cli.Context) error {
	if c.NArg() != 1 {
		if err := cli.ShowAppHelp(c); err != nil {
			return err
		}
		return cli.Exit("exactly one arm side is required", 2)
	}
	side, err := arm.ParseSide(c.Args().First())
	if err != nil {
		if helpErr := cli.ShowAppHelp(c); helpErr != nil {
			return helpErr
		}
		return cli.Exit(err.Error(), 2)
	}

	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return err
	}

	logger := logging.NewLogger("trajectory_markers")
	if c.Bool(flagDebug) || cfg.Debug {
		logger = logging.NewDebugLogger("trajectory_markers")
	}
	if cfg.LogFile != "" {
		fileAppender := logging.NewFileAppender(cfg.LogFile)
		logger.AddAppender(fileAppender)
		defer func() {
			_ = fileAppender.Close()
		}()
	}
	logging.ReplaceGlobal(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, side, cfg, logger)
}

// run serves a session for side until ctx is done.
func run(ctx context.Context, side arm.Side, cfg *config.Config, logger logging.Logger) (err error) {
	clk := clock.New()
	broker := publish.NewBroker(clk)
	topics := publish.TopicsFor(side)
	sessionID := uuid.New()
	logger = logger.Sublogger(side.String())
	logger.Infow("starting session", "session", sessionID, "frame", cfg.Frame, "topics", topics)

	var transport publish.Transport = broker
	var records web.Archive
	if cfg.Archive.Path != "" {
		a, openErr := archive.Open(cfg.Archive.Path, sessionID, []string{topics.Poses}, logger.Sublogger("archive"))
		if openErr != nil {
			return openErr
		}
		defer func() {
			err = multierr.Combine(err, a.Close())
		}()
		transport = publish.Tee(broker, a)
		records = a
	}

	robot, err := sim.NewRobot(sim.Config{Frame: cfg.Frame, Reach: cfg.Sim.Reach}, logger.Sublogger("sim"))
	if err != nil {
		return err
	}
	markerServer := marker.NewServer(topics.InteractiveMarkers, transport, logger.Sublogger("marker"))
	publisher := publish.NewPublisher(transport, topics, clk, cfg.PublishPeriod(), logger.Sublogger("publish"))
	d, err := dispatcher.New(
		side,
		cfg.Frame,
		robot,
		markerServer,
		publisher,
		dispatcher.Durations{Move: cfg.MoveDuration, Sequence: cfg.SequenceMoveDuration, Head: cfg.HeadDuration},
		logger.Sublogger("dispatcher"),
	)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Web.BindAddress)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", cfg.Web.BindAddress)
	}

	g, gctx := errgroup.WithContext(ctx)
	session := dispatcher.NewSession(d, clk, cfg.PublishPeriod(), logger.Sublogger("session"))
	session.Start(gctx)
	defer session.Close()

	markerServer.Insert(marker.New(side, cfg.Frame, dispatcher.Menu()), session.HandleFeedback)
	if err := markerServer.ApplyChanges(gctx); err != nil {
		_ = listener.Close()
		return err
	}

	svc := web.New(side, markerServer, session, broker, records, logger.Sublogger("web"))
	g.Go(func() error {
		return svc.Serve(gctx, listener)
	})
	return g.Wait()
}
