package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Manager owns the save directory of one acquisition run
type Manager struct {
	outputDir string
}

// NewManager creates a new storage manager, creating outputDir if needed
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{outputDir: outputDir}, nil
}

// Path returns the full path of name inside the save directory
func (m *Manager) Path(name string) string {
	return filepath.Join(m.outputDir, name)
}

// Save writes data under name in the save directory and returns the full path
func (m *Manager) Save(name string, data []byte) (string, error) {
	path := m.Path(name)
	if err := WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ListFiles returns the paths of all regular files in the save directory,
// sorted by name. Files that predate the run are included.
func (m *Manager) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, m.Path(entry.Name()))
	}
	sort.Strings(paths)

	return paths, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it over path, so readers never observe a partially written file
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := tmp.Name()

	_, err = tmp.Write(data)
	closeErr := tmp.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write file data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
