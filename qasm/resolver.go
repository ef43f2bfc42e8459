package qasm

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed qelib1.inc
var qelib1 string

// StandardLibrary is the name of the standard gate library every
// OpenQASM 2.0 program may include.
const StandardLibrary = "qelib1.inc"

// ErrIncludeNotFound is returned when no search path holds an include.
var ErrIncludeNotFound = errors.New("include not found")

// Resolver supplies the source text of an include statement.
type Resolver interface {
	Resolve(name string) (src string, path string, err error)
}

// FileResolver serves the embedded standard library and otherwise looks
// the file up in Paths, in order. Absolute names are read directly.
type FileResolver struct {
	Paths []string
}

func (r FileResolver) Resolve(name string) (string, string, error) {
	if name == StandardLibrary {
		return qelib1, StandardLibrary, nil
	}
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = candidates[:0]
		for _, dir := range r.Paths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, path := range candidates {
		src, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", "", err
		}
		return string(src), path, nil
	}
	return "", "", fmt.Errorf("%q: %w", name, ErrIncludeNotFound)
}
