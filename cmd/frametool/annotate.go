package main

import (
	"context"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/usecase"
)

func (a *app) annotateCommand() *cli.Command {
	return &cli.Command{
		Name:  "annotate",
		Usage: "Re-encode a video with each frame's index drawn in the corner",
		Flags: []cli.Flag{
			inputFlag(),
			outputFlag(),
		},
		Action: a.annotate,
	}
}

func (a *app) annotate(ctx context.Context, cmd *cli.Command) error {
	stream, err := a.openStream(ctx, cmd.String("input"))
	if err != nil {
		return err
	}
	defer stream.Close()

	name := stream.Name()
	pipeline, err := a.pipeline()
	if err != nil {
		return err
	}
	bar := a.newBar(stream.FrameCount(), name)
	res, err := pipeline.WithProgress(barProgress(bar)).Run(ctx, stream, entity.Whole(), usecase.Outputs{
		VideoPath: filepath.Join(cmd.String("output"), name, name+a.cfg.VideoExt),
	}, usecase.TransformOptions{Annotate: true})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	a.log.Info("annotation finished", zap.String("stream", name), zap.Int("frames", res.FramesWritten))
	return nil
}
