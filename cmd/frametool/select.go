package main

import (
	"context"
	"math/rand/v2"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/usecase"
)

func (a *app) selectCommand() *cli.Command {
	return &cli.Command{
		Name:  "select",
		Usage: "Sample frames around the middle of each image directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "base",
				Aliases:  []string{"b"},
				Usage:    "Image directory, directory of image directories, or a file inside one",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "save",
				Aliases:  []string{"o"},
				Usage:    "Directory the selected frames are copied into",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "num",
				Aliases: []string{"n"},
				Usage:   "Frames to select per directory",
				Value:   10,
			},
			&cli.Float64Flag{
				Name:  "std",
				Usage: "Standard deviation of the normal draw, in frames",
				Value: 10,
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Random seed",
			},
		},
		Action: a.selectFrames,
	}
}

func (a *app) selectFrames(_ context.Context, cmd *cli.Command) error {
	seed := cmd.Uint64("seed")
	selector := usecase.NewFrameSelector(rand.New(rand.NewPCG(seed, seed)), a.log)

	copied, err := selector.SelectFromPath(cmd.String("base"), cmd.String("save"), cmd.Int("num"), cmd.Float64("std"))
	if err != nil {
		return err
	}
	a.log.Info("frames selected", zap.Int("copied", len(copied)), zap.String("save_dir", cmd.String("save")))
	return nil
}
