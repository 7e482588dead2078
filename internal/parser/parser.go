package parser

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
)

// Options tune how a file is turned into a dataset.
type Options struct {
	// Delimiter for CSV. If 0, auto-detects among ',', ';', '\t'.
	Delimiter rune
}

// Loader turns a tabular file into a cleaning dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (cleaning.Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// LoadFile selects a loader based on filename and returns the parsed dataset.
func LoadFile(path string, opt Options) (cleaning.Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return cleaning.Dataset{}, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// ParseDelimiter maps a config or flag value to a delimiter rune. Empty means auto-detect.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r[0], nil
}

func init() {
	Register(csvLoader{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")
