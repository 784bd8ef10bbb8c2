package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()

	tmpDir, err := os.MkdirTemp("", "osfilesystem_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testPath := filepath.Join(tmpDir, "snapshots", "frame-000001.png")
	testData := []byte("png bytes")

	if err := fs.WriteFile(testPath, testData); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(testPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}
}

func TestFileSystem_Exists(t *testing.T) {
	fs := New()

	tmpDir, err := os.MkdirTemp("", "osfilesystem_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	video := filepath.Join(tmpDir, "clip.mp4")
	if err := os.WriteFile(video, []byte("x"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := fs.MkdirAll(filepath.Join(tmpDir, "dir.mp4")); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"regular file", video, true},
		{"missing file", filepath.Join(tmpDir, "missing.mp4"), false},
		{"directory", filepath.Join(tmpDir, "dir.mp4"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fs.Exists(tt.path)
			if err != nil {
				t.Fatalf("Exists failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFileSystem_Abs(t *testing.T) {
	fs := New()

	got, err := fs.Abs("videos/../clip.mp4")
	if err != nil {
		t.Fatalf("Abs failed: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
	if filepath.Base(got) != "clip.mp4" || filepath.Base(filepath.Dir(got)) == "videos" {
		t.Errorf("path not cleaned: %q", got)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err = fs.Abs("~/clip.mp4")
	if err != nil {
		t.Fatalf("Abs failed: %v", err)
	}
	if got != filepath.Join(home, "clip.mp4") {
		t.Errorf("Abs(~/clip.mp4) = %q, want %q", got, filepath.Join(home, "clip.mp4"))
	}
}
