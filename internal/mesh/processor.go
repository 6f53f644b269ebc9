package mesh

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"plinth/internal/config"
	"plinth/internal/fileutil"
	"plinth/internal/scanner"
)

// Processor turns scan candidates into reviewable records.
type Processor struct {
	previewSize int
	maxBytes    int64
	now         func() time.Time
}

// NewProcessor builds a processor from the import configuration.
func NewProcessor(cfg *config.Config) *Processor {
	return &Processor{
		previewSize: cfg.Import.PreviewSize,
		maxBytes:    int64(cfg.Import.MaxFileMiB) * 1024 * 1024,
		now:         time.Now,
	}
}

// Process decodes one candidate and derives its record. The candidate's
// inline data is preferred; otherwise the file is read from AbsPath. Files
// over the configured size limit are rejected before any decoding work.
func (p *Processor) Process(candidate scanner.Candidate) (*Record, error) {
	if p.maxBytes > 0 && candidate.SizeBytes > p.maxBytes {
		return nil, fmt.Errorf("%s: %d bytes exceeds the %d byte limit", candidate.RelPath, candidate.SizeBytes, p.maxBytes)
	}

	data := candidate.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(candidate.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", candidate.RelPath, err)
		}
	}
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%s: %d bytes exceeds the %d byte limit", candidate.RelPath, len(data), p.maxBytes)
	}

	solid, err := DecodeSTL(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", candidate.RelPath, err)
	}

	preview, err := RenderPreview(solid, p.previewSize)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", candidate.RelPath, err)
	}

	record := &Record{
		LocalID:    uuid.New().String(),
		Name:       DisplayName(candidate.RelPath),
		RelPath:    candidate.RelPath,
		AbsPath:    candidate.AbsPath,
		SizeBytes:  int64(len(data)),
		Triangles:  int64(len(solid.Triangles)),
		Tags:       Classify(solid),
		PreviewPNG: preview,
		Metadata: Metadata{
			Fingerprint: fileutil.Fingerprint(data),
			Format:      solid.Format,
			SolidName:   solid.Name,
			Bounds:      solid.Bounds,
			ImportedAt:  p.now().UTC(),
		},
	}
	if !candidate.LastModified.IsZero() {
		modified := candidate.LastModified
		record.LastModified = &modified
	}
	return record, nil
}
