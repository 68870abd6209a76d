package main

import (
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/fiapx/fiapx-frametool/internal/usecase"
)

// newBar counts frames on stderr. An unknown total renders a spinner.
func (a *app) newBar(total int, desc string) *progressbar.ProgressBar {
	if total <= 0 {
		total = -1
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(a.stderr),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { _, _ = a.stderr.Write([]byte("\n")) }),
	)
}

func barProgress(bar *progressbar.ProgressBar) usecase.ProgressFunc {
	return func(int) { _ = bar.Add(1) }
}
