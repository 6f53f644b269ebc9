package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"plinth/internal/fileutil"
	"plinth/internal/logging"
)

// Candidate is one discovered model file, ephemeral to a single scan.
// AbsPath is empty when the candidate was handed over as raw bytes rather
// than discovered on disk.
type Candidate struct {
	RelPath      string
	AbsPath      string
	SizeBytes    int64
	LastModified time.Time
	Data         []byte
}

// ScanError records a sub-entry that could not be enumerated.
type ScanError struct {
	Path string
	Err  error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e ScanError) Unwrap() error { return e.Err }

// Result is the outcome of one scan: the ordered candidate list plus any
// entries that had to be skipped.
type Result struct {
	Candidates []Candidate
	Skipped    []ScanError
}

// Scanner walks import roots for model files.
type Scanner struct {
	logger *slog.Logger
}

// New constructs a scanner. A nil logger is tolerated.
func New(logger *slog.Logger) *Scanner {
	return &Scanner{logger: logging.NewComponentLogger(logger, "scanner")}
}

// Scan enumerates model files below root in lexical order. Unreadable
// entries are skipped, logged, and recorded in the result; the walk
// continues. Hidden files and directories (dot-prefixed) are ignored.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	result := &Result{}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			result.Skipped = append(result.Skipped, ScanError{Path: path, Err: walkErr})
			s.logger.Warn("skipping unreadable entry",
				logging.String("path", path),
				logging.Error(walkErr),
				logging.String(logging.FieldEventType, "scan_entry_skipped"),
			)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !fileutil.IsModelFile(name) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			result.Skipped = append(result.Skipped, ScanError{Path: path, Err: err})
			s.logger.Warn("skipping unstatable file",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "scan_entry_skipped"),
			)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = name
		}
		result.Candidates = append(result.Candidates, Candidate{
			RelPath:      filepath.ToSlash(rel),
			AbsPath:      path,
			SizeBytes:    info.Size(),
			LastModified: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	s.logger.Debug("scan finished",
		logging.String(logging.FieldDirectory, root),
		logging.Int("candidates", len(result.Candidates)),
		logging.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}
