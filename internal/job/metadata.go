package job

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alnah/go-dubline/internal/segment"
)

// Metadata is the JSON sidecar written next to a job's output files. It
// carries everything needed to re-render subtitles without re-transcribing.
type Metadata struct {
	ID               string                           `json:"id"`
	Filename         string                           `json:"filename"`
	OriginalLanguage string                           `json:"original_language"`
	SentencePairs    []segment.Segment                `json:"sentence_pairs"`
	Translations     map[string][]segment.Translation `json:"translations"`
}

// SaveMetadata writes meta to path as indented JSON.
func SaveMetadata(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata %s: %w", path, err)
	}
	return nil
}

// LoadMetadata reads the sidecar at path.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from the job's own output dir
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata %s: %w", path, err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata %s: %w", path, err)
	}
	return meta, nil
}
