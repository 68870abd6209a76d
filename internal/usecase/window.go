package usecase

import "github.com/fiapx/fiapx-frametool/internal/domain/entity"

// WindowFromTimes converts a [start, end] range in seconds into frame indices,
// widened by extra seconds on both sides. A nil end means the end of the
// stream (totalFrames / fps). The start is clamped to zero.
func WindowFromTimes(start float64, end *float64, fps float64, totalFrames int, extra float64) entity.FrameWindow {
	endTime := float64(totalFrames) / fps
	if end != nil {
		endTime = *end
	}
	w := entity.FrameWindow{
		Start: int((start - extra) * fps),
		End:   int((endTime + extra) * fps),
	}
	if w.Start < 0 {
		w.Start = 0
	}
	return w
}

// PadWindow widens w by int(fps*extra) frames on both sides, clamping the
// start to zero.
func PadWindow(w entity.FrameWindow, fps, extra float64) entity.FrameWindow {
	pad := int(fps * extra)
	out := entity.FrameWindow{Start: w.Start - pad, End: w.End + pad}
	if out.Start < 0 {
		out.Start = 0
	}
	return out
}
