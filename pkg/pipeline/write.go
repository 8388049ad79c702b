package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
)

// OutputBase returns the artifact base name for src. A single input uses
// base as is; with several inputs each gets base_<stem> so outputs do not
// overwrite each other.
func OutputBase(base string, src Source, multiple bool) string {
	if !multiple {
		return base
	}
	return base + "_" + src.Stem()
}

// WriteArtifacts writes each artifact to dir/base.<format> and returns the
// written paths in format order. dir is created if needed.
func WriteArtifacts(dir, base string, artifacts map[string][]byte) ([]string, error) {
	if err := apperrors.ValidateOutputName(base); err != nil {
		return nil, err
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "create output directory %s", dir)
		}
	}

	var paths []string
	for _, format := range formatOrder {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := filepath.Join(dir, base+"."+format)
		if err := writeFile(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeFile replaces path atomically so a viewer polling the file never
// sees a partial write.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
