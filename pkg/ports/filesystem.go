package ports

// FileSystem abstracts the file operations used for loading videos, reading
// configuration and writing snapshots.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists reports whether a regular file exists at path.
	// Directories report false.
	Exists(path string) (bool, error)

	// Abs returns a cleaned absolute form of path.
	Abs(path string) (string, error)
}
