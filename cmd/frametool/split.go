package main

import (
	"context"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/usecase"
)

func (a *app) splitCommand() *cli.Command {
	return &cli.Command{
		Name:  "split",
		Usage: "Cut a frame range, padded on both sides, into its own video",
		Flags: []cli.Flag{
			inputFlag(),
			outputFlag(),
			nameFlag(),
			&cli.IntFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start frame",
			},
			&cli.IntFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End frame",
			},
			&cli.Float64Flag{
				Name:  "extra",
				Usage: "Seconds of padding added before start and after end",
				Value: a.cfg.ExtraTime,
			},
		},
		Action: a.split,
	}
}

func (a *app) split(ctx context.Context, cmd *cli.Command) error {
	stream, err := a.openStream(ctx, cmd.String("input"))
	if err != nil {
		return err
	}
	defer stream.Close()

	window := usecase.PadWindow(
		entity.FrameWindow{Start: cmd.Int("start"), End: cmd.Int("end")},
		stream.FrameRate(), cmd.Float64("extra"),
	)

	name := cmd.String("name")
	dir := filepath.Join(cmd.String("output"), name)

	pipeline, err := a.pipeline()
	if err != nil {
		return err
	}
	bar := a.newBar(min(window.Len(), stream.FrameCount()-window.Start), name)
	res, err := pipeline.WithProgress(barProgress(bar)).Run(ctx, stream, window, usecase.Outputs{
		VideoPath: filepath.Join(dir, name+a.cfg.VideoExt),
	}, usecase.TransformOptions{})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	a.log.Info("split finished",
		zap.Stringer("window", window),
		zap.Int("frames", res.FramesWritten),
	)
	return nil
}
