package main

import (
	"context"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/usecase"
)

func (a *app) rotateCommand() *cli.Command {
	return &cli.Command{
		Name:  "rotate",
		Usage: "Re-encode a whole video turned by a quarter",
		Flags: []cli.Flag{
			inputFlag(),
			outputFlag(),
			rotateFlag(),
		},
		Action: a.rotate,
	}
}

func (a *app) rotate(ctx context.Context, cmd *cli.Command) error {
	rot, err := rotation(cmd)
	if err != nil {
		return err
	}
	stream, err := a.openStream(ctx, cmd.String("input"))
	if err != nil {
		return err
	}
	defer stream.Close()

	a.log.Info("rotating", zap.String("stream", stream.Name()), zap.String("direction", string(rot)))

	pipeline, err := a.pipeline()
	if err != nil {
		return err
	}
	bar := a.newBar(stream.FrameCount(), stream.Name())
	res, err := pipeline.WithProgress(barProgress(bar)).Run(ctx, stream, entity.Whole(), usecase.Outputs{
		VideoPath: filepath.Join(cmd.String("output"), stream.Name()+a.cfg.VideoExt),
	}, usecase.TransformOptions{Rotation: rot})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	a.log.Info("rotation finished", zap.Int("frames", res.FramesWritten), zap.Int("width", res.Width), zap.Int("height", res.Height))
	return nil
}
