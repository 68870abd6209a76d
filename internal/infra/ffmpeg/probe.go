package ffmpeg

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
)

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
	SideDataList []struct {
		Rotation float64 `json:"rotation"`
	} `json:"side_data_list"`
	Tags struct {
		Rotate string `json:"rotate"`
	} `json:"tags"`
}

// rotation returns the display rotation in degrees, preferring the display
// matrix side data over the legacy rotate tag.
func (s probeStream) rotation() int {
	for _, sd := range s.SideDataList {
		if sd.Rotation != 0 {
			return int(math.Round(sd.Rotation))
		}
	}
	return int(math.Round(parseFloat(s.Tags.Rotate)))
}

// Probe reads stream geometry, frame rate and frame count with ffprobe.
func Probe(path string, timeout time.Duration) (entity.StreamInfo, error) {
	out, err := ffmpeggo.ProbeWithTimeout(path, timeout, ffmpeggo.KwArgs{})
	if err != nil {
		return entity.StreamInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbe([]byte(out))
}

func parseProbe(data []byte) (entity.StreamInfo, error) {
	var p probeOutput
	if err := json.Unmarshal(data, &p); err != nil {
		return entity.StreamInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	for _, s := range p.Streams {
		if s.CodecType != "video" {
			continue
		}
		fps := parseRate(s.AvgFrameRate)
		if fps == 0 {
			fps = parseRate(s.RFrameRate)
		}
		info := entity.StreamInfo{
			Width:     s.Width,
			Height:    s.Height,
			FrameRate: fps,
		}
		// ffmpeg autorotates on decode, so quarter turns swap the output axes.
		if r := s.rotation() % 180; r == 90 || r == -90 {
			info.Width, info.Height = info.Height, info.Width
		}
		if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
			info.FrameCount = n
		} else {
			dur := parseFloat(s.Duration)
			if dur == 0 {
				dur = parseFloat(p.Format.Duration)
			}
			info.FrameCount = int(math.Round(dur * fps))
		}
		if info.Width <= 0 || info.Height <= 0 {
			return entity.StreamInfo{}, fmt.Errorf("video stream has no geometry")
		}
		return info, nil
	}
	return entity.StreamInfo{}, fmt.Errorf("no video stream found")
}

// parseRate handles "30000/1001" and plain decimal forms; "0/0" yields 0.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return parseFloat(s)
	}
	n, d := parseFloat(num), parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
