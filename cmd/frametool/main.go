package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/domain/port"
	"github.com/fiapx/fiapx-frametool/internal/infra/config"
	"github.com/fiapx/fiapx-frametool/internal/infra/ffmpeg"
	"github.com/fiapx/fiapx-frametool/internal/infra/imagedir"
	"github.com/fiapx/fiapx-frametool/internal/media"
	"github.com/fiapx/fiapx-frametool/internal/usecase"
	"github.com/fiapx/fiapx-frametool/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, stderr: os.Stderr}
	if err := a.command().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "frametool:", err)
		stop()
		os.Exit(1)
	}
}

// app holds the adapters shared by every subcommand. Fields left nil are
// built from the configuration before the first action runs.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	decoder port.Decoder
	encoder port.VideoEncoder
	stderr  io.Writer
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "frametool",
		Usage: "Extract, rotate, annotate, sample and play video frames",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: a.cfg.LogLevel,
			},
			&cli.StringFlag{
				Name:  "ffmpeg",
				Usage: "Path to the ffmpeg binary",
				Value: a.cfg.FFmpegPath,
			},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			a.extractCommand(),
			a.splitCommand(),
			a.framesCommand(),
			a.rotateCommand(),
			a.annotateCommand(),
			a.selectCommand(),
			a.playCommand(),
		},
	}
}

func (a *app) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if a.log == nil {
		log, err := logger.NewConsole(cmd.String("log-level"))
		if err != nil {
			return ctx, err
		}
		a.log = log
	}
	if a.decoder == nil {
		a.decoder = ffmpeg.NewDecoder(cmd.String("ffmpeg"), a.cfg.ProbeTimeout, a.log)
	}
	if a.encoder == nil {
		a.encoder = ffmpeg.NewEncoder(cmd.String("ffmpeg"), a.cfg.VideoCodec, a.cfg.VideoTag, a.log)
	}
	return ctx, nil
}

func (a *app) openStream(ctx context.Context, path string) (*media.Stream, error) {
	return media.Open(ctx, a.decoder, path, a.cfg.VideoExtensions)
}

func (a *app) pipeline() (*usecase.FrameTransformPipeline, error) {
	images, err := imagedir.NewOpener(a.cfg.ImageExt, a.cfg.JPEGQuality, a.log)
	if err != nil {
		return nil, err
	}
	return usecase.NewFrameTransformPipeline(a.encoder, images, a.log), nil
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "Input video path",
		Required: true,
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "Output directory",
		Required: true,
	}
}

func nameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "name",
		Aliases:  []string{"n"},
		Usage:    "Output video name",
		Required: true,
	}
}

func rotateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "rotate",
		Aliases: []string{"r"},
		Usage:   "Rotation direction: 'left' for clockwise, 'right' for counterclockwise, 'none' for no rotation",
		Value:   string(entity.RotateNone),
	}
}

func rotation(cmd *cli.Command) (entity.Rotation, error) {
	return entity.ParseRotation(cmd.String("rotate"))
}
