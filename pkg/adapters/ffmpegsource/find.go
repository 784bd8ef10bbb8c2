package ffmpegsource

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var (
	// ErrFFmpegNotFound is returned when ffmpeg cannot be located.
	ErrFFmpegNotFound = errors.New("ffmpegsource: ffmpeg not found in PATH")

	// ErrFFprobeNotFound is returned when ffprobe cannot be located.
	ErrFFprobeNotFound = errors.New("ffmpegsource: ffprobe not found in PATH")
)

// FindFFmpeg locates ffmpeg. Priority: custom path, FFMPEG_PATH env, PATH,
// common install locations.
func FindFFmpeg(custom string) (string, error) {
	return findBinary("ffmpeg", custom, "FFMPEG_PATH", ErrFFmpegNotFound)
}

// FindFFprobe locates ffprobe the same way, using FFPROBE_PATH. Without an
// explicit location it also looks next to the resolved ffmpeg.
func FindFFprobe(custom, ffmpegPath string) (string, error) {
	path, err := findBinary("ffprobe", custom, "FFPROBE_PATH", ErrFFprobeNotFound)
	if err == nil || custom != "" || ffmpegPath == "" {
		return path, err
	}
	sibling := strings.Replace(ffmpegPath, "ffmpeg", "ffprobe", 1)
	if sibling != ffmpegPath && isFile(sibling) {
		return sibling, nil
	}
	return "", err
}

func findBinary(name, custom, envVar string, notFound error) (string, error) {
	if custom != "" {
		if isFile(custom) {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", notFound, custom)
	}

	if envPath := os.Getenv(envVar); envPath != "" {
		if isFile(envPath) {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s %s not found", notFound, envVar, envPath)
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName += ".exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\` + execName,
			`C:\Program Files\ffmpeg\bin\` + execName,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/" + name,
			"/usr/local/bin/" + name,
			"/opt/homebrew/bin/" + name,
			"/snap/bin/" + name,
		}
	}
	for _, p := range commonPaths {
		if isFile(p) {
			return p, nil
		}
	}

	return "", notFound
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
