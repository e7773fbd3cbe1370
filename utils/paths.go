package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveDir returns the absolute path of dir. A relative dir is looked up in
// the working directory first and then in its parent, so the binary works
// both from the repository root and from a subdirectory such as cmd/.
func ResolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}

	candidates := []string{dir, filepath.Join("..", dir)}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return "", fmt.Errorf("directory %s not found in the working directory or its parent", dir)
}
