package factors

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed defaults.json
var defaultFactors []byte

// Format is the encoding of a factor source.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Source describes where the factor table comes from.
type Source struct {
	Name   string
	Format Format
	Read   func() ([]byte, error)
}

// FileSource reads the table from path; the format follows the extension.
func FileSource(path string) Source {
	return Source{
		Name:   path,
		Format: formatFromPath(path),
		Read:   func() ([]byte, error) { return os.ReadFile(path) },
	}
}

// BytesSource serves an in-memory table.
func BytesSource(name string, format Format, data []byte) Source {
	return Source{
		Name:   name,
		Format: format,
		Read:   func() ([]byte, error) { return data, nil },
	}
}

// DefaultSource is the table shipped with the binary.
func DefaultSource() Source {
	return BytesSource("embedded:defaults.json", FormatJSON, defaultFactors)
}

func formatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func (f Format) validate() error {
	switch f {
	case FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported format %q", string(f))
	}
}
