// Package detector handles input kind detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
)

// Kind is the type of an input file.
type Kind string

// Supported input kinds.
const (
	Fixture Kind = "fixture" // blockchain test fixture JSON
	Hex     Kind = "hex"     // code as hex text
	Binary  Kind = "binary"  // raw code bytes
)

func (k Kind) String() string {
	return string(k)
}

// Detector handles input kind detection from file extensions.
type Detector struct {
	logger *log.Logger
}

// New creates a new input detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the input kind from the file extension.
func (d *Detector) Detect(filename string) Kind {
	kind := detectFromFile(filename)
	d.logger.Debug("Detected input kind",
		log.Stringer("kind", kind),
		log.String("file", filename))
	return kind
}

func detectFromFile(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return Fixture
	case ".bin":
		return Binary
	default:
		// .hex, .txt and unknown extensions are read as hex text
		return Hex
	}
}
