package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"WCSPull/internal/domain/models"
)

// Options configure a read. Zero values mean auto-detection and the
// 10 Hz default rate.
type Options struct {
	Format       Format
	SamplingRate float64
	Source       string // file name or URL, for error messages and metadata
}

const defaultSamplingRate = 10.0

// Read consumes a whole velocity export and returns a validated
// session. The format is auto-detected unless overridden in Options.
func Read(r io.Reader, opts Options) (*models.Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: read: %w", opts.Source, err)
	}
	lines := splitLines(string(data))
	if len(lines) == 0 {
		return nil, fmt.Errorf("ingest %s: empty file", opts.Source)
	}

	format := opts.Format
	if format == "" || format == FormatAuto {
		var conf float64
		format, conf = DetectFormat(lines)
		if format == FormatUnknown || conf == 0 {
			return nil, fmt.Errorf("ingest %s: unrecognised file format", opts.Source)
		}
	}

	rate := opts.SamplingRate
	if rate <= 0 {
		rate = defaultSamplingRate
	}

	var s *models.Session
	switch format {
	case FormatStatSport:
		s, err = readStatSport(lines, opts.Source)
	case FormatCatapult:
		s, err = readCatapult(lines, opts.Source)
	case FormatGeneric:
		s, err = readGeneric(lines, opts.Source)
	default:
		return nil, fmt.Errorf("ingest %s: unsupported format %q", opts.Source, format)
	}
	if err != nil {
		return nil, err
	}

	s.ID = uuid.NewString()
	s.SamplingRate = rate
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	return s, nil
}

// ReadFile opens and reads one export from disk.
func ReadFile(path string, opts Options) (*models.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer f.Close()

	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	return Read(bufio.NewReader(f), opts)
}

func splitLines(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
