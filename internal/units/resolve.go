package units

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/funvibe/oolong/internal/config"
)

// LoadError reports a module reference that matched no file.
type LoadError struct {
	Name string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot open module %q", e.Name)
}

// Resolve maps a module reference to a file path. A bare name tries the
// source extensions; a name that already carries one is used as given.
// Roots are searched in order, the current directory when there are none.
// Absolute references skip the roots entirely.
func Resolve(name string, roots []string) (string, error) {
	candidates := []string{name}
	if !hasSourceExt(name) {
		candidates = nil
		for _, ext := range config.SourceFileExtensions {
			candidates = append(candidates, name+ext)
		}
		candidates = append(candidates, name)
	}

	if filepath.IsAbs(name) {
		for _, c := range candidates {
			if isFile(c) {
				return c, nil
			}
		}
		return "", &LoadError{Name: name}
	}

	if len(roots) == 0 {
		roots = []string{"."}
	}
	for _, root := range roots {
		for _, c := range candidates {
			path := filepath.Join(root, c)
			if isFile(path) {
				return path, nil
			}
		}
	}
	return "", &LoadError{Name: name}
}

func hasSourceExt(name string) bool {
	ext := filepath.Ext(name)
	for _, known := range config.SourceFileExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
