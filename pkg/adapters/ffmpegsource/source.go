// Package ffmpegsource implements ports.FrameSource with the ffmpeg and
// ffprobe command line tools.
//
// Every SeekAndRead runs one ffmpeg process that seeks to the frame's
// timestamp and writes a single raw RGBA frame to stdout, so any frame can
// be read in any order without decoder state carried between calls.
package ffmpegsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/user/framestep/pkg/adapters/mp4meta"
	"github.com/user/framestep/pkg/ports"
)

// Options configures the source.
type Options struct {
	// FFmpegPath and FFprobePath override binary lookup.
	FFmpegPath  string
	FFprobePath string
}

// Source opens videos for frame-accurate reads through ffmpeg.
type Source struct {
	ffmpeg  string
	ffprobe string
	logger  ports.Logger
}

// New locates ffmpeg and ffprobe. A missing binary is reported as
// ports.ErrDecodeInit.
func New(opts Options, logger ports.Logger) (*Source, error) {
	ffmpeg, err := FindFFmpeg(opts.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrDecodeInit, err)
	}
	ffprobe, err := FindFFprobe(opts.FFprobePath, ffmpeg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrDecodeInit, err)
	}
	log := logger.WithComponent("source")
	log.Debug("Using %s and %s", ffmpeg, ffprobe)
	return &Source{ffmpeg: ffmpeg, ffprobe: ffprobe, logger: log}, nil
}

// StreamInfo is what Open learns about the first video stream.
type StreamInfo struct {
	Codec     string
	Width     int
	Height    int
	FrameRate float64
}

// Open probes path and returns a handle for reading its frames.
func (s *Source) Open(ctx context.Context, path string) (ports.VideoHandle, error) {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, path)
	}

	info, err := s.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Opened %s: %s %dx%d at %.3f fps", path, info.Codec, info.Width, info.Height, info.FrameRate)
	return &Handle{source: s, path: path, info: info}, nil
}

// Probe reads the stream parameters of path. MP4 containers are parsed
// directly for the frame rate; other formats use ffprobe's average rate.
func (s *Source) Probe(ctx context.Context, path string) (StreamInfo, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,width,height,avg_frame_rate,r_frame_rate",
		"-of", "json",
		path,
	)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return StreamInfo{}, ctx.Err()
		}
		return StreamInfo{}, fmt.Errorf("%w: ffprobe %s: %v: %s", ports.ErrDecodeInit, path, err, strings.TrimSpace(stderr.String()))
	}

	info, err := parseProbe(out)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("%w: %s: %v", ports.ErrDecodeInit, path, err)
	}

	if meta, err := mp4meta.ReadFile(path); err == nil && meta.FrameRate > 0 {
		info.FrameRate = meta.FrameRate
	}
	if info.FrameRate <= 0 {
		return StreamInfo{}, fmt.Errorf("%w: %s: unknown frame rate", ports.ErrDecodeInit, path)
	}
	return info, nil
}

type probeOutput struct {
	Streams []struct {
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
}

func parseProbe(data []byte) (StreamInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return StreamInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return StreamInfo{}, errors.New("no video stream")
	}
	st := out.Streams[0]
	if st.Width <= 0 || st.Height <= 0 {
		return StreamInfo{}, fmt.Errorf("invalid frame size %dx%d", st.Width, st.Height)
	}

	rate := parseRate(st.AvgFrameRate)
	if rate <= 0 {
		rate = parseRate(st.RFrameRate)
	}
	return StreamInfo{
		Codec:     st.CodecName,
		Width:     st.Width,
		Height:    st.Height,
		FrameRate: rate,
	}, nil
}

// parseRate parses ffprobe rationals such as "30000/1001". It returns 0 for
// "0/0" and malformed input.
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

var _ ports.FrameSource = (*Source)(nil)

// Handle is an open video. Close may race with a read in flight; reads are
// otherwise independent ffmpeg runs.
type Handle struct {
	source *Source
	path   string
	info   StreamInfo
	closed atomic.Bool
}

func (h *Handle) Path() string { return h.path }

func (h *Handle) FrameRate() float64 { return h.info.FrameRate }

// Info returns the probed stream parameters.
func (h *Handle) Info() StreamInfo { return h.info }

// SeekAndRead decodes frame. Frames past the end of the stream, and any
// ffmpeg failure, are reported as ports.ErrReadEnd.
func (h *Handle) SeekAndRead(ctx context.Context, frame int) (*ports.DisplayFrame, error) {
	if h.closed.Load() {
		return nil, fmt.Errorf("%w: %s is closed", ports.ErrReadEnd, h.path)
	}
	if frame < 0 {
		return nil, fmt.Errorf("%w: frame %d", ports.ErrReadEnd, frame)
	}

	ms := ports.FrameToMsec(frame, h.info.FrameRate)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, h.source.ffmpeg,
		"-v", "error",
		"-nostdin",
		"-ss", strconv.FormatFloat(ms/1000, 'f', 6, 64),
		"-i", h.path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: frame %d: %v: %s", ports.ErrReadEnd, frame, err, strings.TrimSpace(stderr.String()))
	}

	w, ht := h.info.Width, h.info.Height
	if len(out) < w*ht*4 {
		return nil, fmt.Errorf("%w: frame %d", ports.ErrReadEnd, frame)
	}

	img := &image.RGBA{
		Pix:    out[:w*ht*4],
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, ht),
	}
	return &ports.DisplayFrame{Index: frame, TimestampMs: ms, Image: img}, nil
}

// Close marks the handle closed. No process outlives a read.
func (h *Handle) Close() error {
	h.closed.Store(true)
	return nil
}

var _ ports.VideoHandle = (*Handle)(nil)
