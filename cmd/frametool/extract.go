package main

import (
	"context"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/usecase"
)

func (a *app) extractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Extract a time window into a video and a directory of frames",
		Flags: []cli.Flag{
			inputFlag(),
			outputFlag(),
			nameFlag(),
			&cli.Float64Flag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start time in seconds",
			},
			&cli.Float64Flag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End time in seconds (default: end of video)",
			},
			rotateFlag(),
			&cli.Float64Flag{
				Name:    "fps",
				Aliases: []string{"f"},
				Usage:   "Frame rate of the output video (default: source rate)",
			},
			&cli.Float64Flag{
				Name:  "extra",
				Usage: "Seconds added before start and after end",
				Value: a.cfg.ExtraTime,
			},
		},
		Action: a.extract,
	}
}

func (a *app) extract(ctx context.Context, cmd *cli.Command) error {
	rot, err := rotation(cmd)
	if err != nil {
		return err
	}

	stream, err := a.openStream(ctx, cmd.String("input"))
	if err != nil {
		return err
	}
	defer stream.Close()

	fps := stream.FrameRate()
	if cmd.IsSet("fps") {
		fps = cmd.Float64("fps")
	}
	var end *float64
	if cmd.IsSet("end") {
		e := cmd.Float64("end")
		end = &e
	}
	window := usecase.WindowFromTimes(cmd.Float64("start"), end, fps, stream.FrameCount(), cmd.Float64("extra"))

	a.log.Info("extracting window",
		zap.String("stream", stream.Name()),
		zap.Float64("fps", fps),
		zap.Int("total_frames", stream.FrameCount()),
		zap.Stringer("window", window),
	)

	pipeline, err := a.pipeline()
	if err != nil {
		return err
	}
	name := cmd.String("name")
	outDir := cmd.String("output")
	bar := a.newBar(min(window.Len(), stream.FrameCount()-window.Start), name)

	res, err := pipeline.WithProgress(barProgress(bar)).Run(ctx, stream, window, usecase.Outputs{
		VideoPath: filepath.Join(outDir, a.cfg.VideoDir, name+a.cfg.VideoExt),
		ImageDir:  filepath.Join(outDir, a.cfg.ImageDir),
		Name:      name,
		FrameRate: fps,
	}, usecase.TransformOptions{Rotation: rot})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	a.log.Info("extraction finished", zap.Int("frames", res.FramesWritten))
	return nil
}
