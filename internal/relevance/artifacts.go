package relevance

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	DictionaryFile = "dictionary.json"
	IndexFile      = "index.json"
)

// ErrArtifactMismatch is returned when a dictionary and an index on disk were
// not built together.
var ErrArtifactMismatch = errors.New("relevance artifacts do not match")

// SaveArtifacts writes the dictionary and index into dir, creating it if needed.
func SaveArtifacts(dir string, dict *Dictionary, idx *Index) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := writeFile(filepath.Join(dir, DictionaryFile), dict.WriteTo); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, IndexFile), idx.WriteTo)
}

// LoadArtifacts reads a dictionary and index previously written by SaveArtifacts.
func LoadArtifacts(dir string) (*Dictionary, *Index, error) {
	df, err := os.Open(filepath.Join(dir, DictionaryFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer df.Close()

	dict, err := ReadDictionary(df)
	if err != nil {
		return nil, nil, err
	}

	xf, err := os.Open(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer xf.Close()

	idx, err := ReadIndex(xf, dict)
	if err != nil {
		return nil, nil, err
	}
	return dict, idx, nil
}

func writeFile(path string, write func(io.Writer) (int64, error)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
