package main

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/usecase"
)

func (a *app) framesCommand() *cli.Command {
	return &cli.Command{
		Name:      "frames",
		Usage:     "Write every frame of one or more videos as still images",
		ArgsUsage: "VIDEO [VIDEO...]",
		Flags: []cli.Flag{
			outputFlag(),
			rotateFlag(),
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Videos processed concurrently",
				Value:   runtime.NumCPU(),
			},
		},
		Action: a.frames,
	}
}

func (a *app) frames(ctx context.Context, cmd *cli.Command) error {
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		return fmt.Errorf("frames: at least one input video is required")
	}
	rot, err := rotation(cmd)
	if err != nil {
		return err
	}
	pipeline, err := a.pipeline()
	if err != nil {
		return err
	}
	outDir := cmd.String("output")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cmd.Int("jobs"), 1))
	for _, input := range inputs {
		g.Go(func() error {
			return a.splitFrames(ctx, pipeline, input, outDir, rot)
		})
	}
	return g.Wait()
}

func (a *app) splitFrames(ctx context.Context, pipeline *usecase.FrameTransformPipeline, input, outDir string, rot entity.Rotation) error {
	stream, err := a.openStream(ctx, input)
	if err != nil {
		return err
	}
	defer stream.Close()

	name := stream.Name()
	bar := a.newBar(stream.FrameCount(), name)
	res, err := pipeline.WithProgress(barProgress(bar)).Run(ctx, stream, entity.Whole(), usecase.Outputs{
		ImageDir: filepath.Join(outDir, name),
		Name:     name,
	}, usecase.TransformOptions{Rotation: rot})
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	a.log.Info("frames written", zap.String("stream", name), zap.Int("frames", res.FramesWritten))
	return nil
}
