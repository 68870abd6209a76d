package main

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fiapx/fiapx-frametool/internal/playback"
)

func (a *app) playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Decode a video in the background and render it to the console",
		Flags: []cli.Flag{
			inputFlag(),
			&cli.IntFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Frame to start playback from",
			},
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "Stop playback after this long (0 plays to the end)",
			},
			&cli.IntFlag{
				Name:  "queue-size",
				Usage: "Frames buffered between decoder and renderer (0 is unbounded)",
			},
			&cli.BoolFlag{
				Name:  "drop",
				Usage: "Drop the oldest buffered frame instead of blocking when the queue is full",
			},
			&cli.IntFlag{
				Name:  "viewer-height",
				Usage: "Height frames are scaled to for display",
				Value: a.cfg.ViewerHeight,
			},
		},
		Action: a.play,
	}
}

// consoleDisplay stands in for a window: it reports the shown frame and the
// stream position on a progress bar.
type consoleDisplay struct {
	bar   *progressbar.ProgressBar
	shown int
}

func (d *consoleDisplay) Show(f playback.DisplayFrame, position int) {
	d.shown++
	d.bar.Describe(fmt.Sprintf("frame %d (%dx%d)", position, f.Image.Bounds().Dx(), f.Image.Bounds().Dy()))
	_ = d.bar.Set(f.Index + 1)
}

func (a *app) play(ctx context.Context, cmd *cli.Command) error {
	stream, err := a.openStream(ctx, cmd.String("input"))
	if err != nil {
		return err
	}
	defer stream.Close()

	policy := playback.BlockProducer
	if cmd.Bool("drop") {
		policy = playback.DropOldest
	}
	queue := playback.NewQueue(cmd.Int("queue-size"), policy)
	player := playback.NewPlayer(stream, queue, cmd.Int("viewer-height"), a.log)

	if start := cmd.Int("start"); start > 0 {
		if err := player.Seek(start); err != nil {
			return err
		}
	}

	if d := cmd.Duration("duration"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	display := &consoleDisplay{bar: a.newBar(stream.FrameCount(), stream.Name())}
	renderer := playback.NewRenderer(queue, display, stream.CurrentFrame)

	player.Start(ctx)

	var g errgroup.Group
	g.Go(func() error {
		renderer.Run(ctx)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		if err := player.Wait(); err != nil {
			return err
		}
		// let the renderer drain what was decoded
		tick := time.NewTicker(renderer.IdleDelay)
		defer tick.Stop()
		for queue.Len() > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-tick.C:
			}
		}
		return nil
	})

	err = g.Wait()
	player.Stop()
	_, _ = fmt.Fprintln(a.stderr)

	a.log.Info("playback stopped",
		zap.Int("shown", display.shown),
		zap.Uint64("dropped", queue.Dropped()),
		zap.Int("position", stream.CurrentFrame()),
	)
	return err
}
