// Package mp4meta reads video track metadata from MP4 containers.
//
// It is a fast path for frame rate and size: the container is parsed without
// decoding any sample. Non-MP4 inputs return an error and callers fall back
// to ffprobe.
package mp4meta

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrNoVideoTrack is returned when the file has no video track.
var ErrNoVideoTrack = errors.New("mp4meta: no video track found")

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecVP9     Codec = "vp9"
	CodecUnknown Codec = "unknown"
)

// Info describes the first video track.
type Info struct {
	Codec       Codec
	Width       int
	Height      int
	Timescale   uint32
	SampleCount int
	Duration    uint64 // in Timescale units
	FrameRate   float64
	Fragmented  bool
}

// ReadFile reads the video track metadata of the MP4 at path.
func ReadFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read reads video track metadata from r.
func Read(r io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	if mp4File.IsFragmented() {
		return readFragmented(mp4File)
	}
	return readProgressive(mp4File)
}

func readProgressive(f *mp4.File) (Info, error) {
	if f.Moov == nil {
		return Info{}, ErrNoVideoTrack
	}
	trak := videoTrak(f.Moov.Traks)
	if trak == nil {
		return Info{}, ErrNoVideoTrack
	}

	info := trackInfo(trak)
	if stts := trak.Mdia.Minf.Stbl.Stts; stts != nil {
		for i, n := range stts.SampleCount {
			info.SampleCount += int(n)
			info.Duration += uint64(n) * uint64(stts.SampleTimeDelta[i])
		}
	}
	info.FrameRate = frameRate(info.SampleCount, info.Duration, info.Timescale)
	return info, nil
}

func readFragmented(f *mp4.File) (Info, error) {
	if f.Init == nil || f.Init.Moov == nil {
		return Info{}, ErrNoVideoTrack
	}
	trak := videoTrak(f.Init.Moov.Traks)
	if trak == nil {
		return Info{}, ErrNoVideoTrack
	}

	info := trackInfo(trak)
	info.Fragmented = true
	trackID := trak.Tkhd.TrackID

	var trex *mp4.TrexBox
	if f.Init.Moov.Mvex != nil {
		for _, t := range f.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}
				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return Info{}, fmt.Errorf("get samples: %w", err)
				}
				for _, s := range samples {
					info.SampleCount++
					info.Duration += uint64(s.Dur)
				}
			}
		}
	}
	info.FrameRate = frameRate(info.SampleCount, info.Duration, info.Timescale)
	return info, nil
}

func videoTrak(traks []*mp4.TrakBox) *mp4.TrakBox {
	for _, trak := range traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
			continue
		}
		return trak
	}
	return nil
}

func trackInfo(trak *mp4.TrakBox) Info {
	info := Info{Codec: CodecUnknown}
	if trak.Mdia.Mdhd != nil {
		info.Timescale = trak.Mdia.Mdhd.Timescale
	}
	stsd := trak.Mdia.Minf.Stbl.Stsd
	if stsd == nil {
		return info
	}
	for _, child := range stsd.Children {
		codec := codecOf(child.Type())
		if codec == CodecUnknown {
			continue
		}
		info.Codec = codec
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
		}
		break
	}
	return info
}

func codecOf(boxType string) Codec {
	switch boxType {
	case "avc1", "avc3":
		return CodecH264
	case "hvc1", "hev1":
		return CodecHEVC
	case "av01":
		return CodecAV1
	case "vp09":
		return CodecVP9
	}
	return CodecUnknown
}

// frameRate returns the mean sample rate of a track.
func frameRate(samples int, duration uint64, timescale uint32) float64 {
	if samples == 0 || duration == 0 || timescale == 0 {
		return 0
	}
	return float64(samples) * float64(timescale) / float64(duration)
}
