package snapshot

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"vsh/internal/model"
)

// FormatVersion is the version written by Marshal.
const FormatVersion = 1

// ErrUnsupportedFormat is returned by Unmarshal for documents written by an
// unknown format version.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

type document struct {
	FormatVersion int            `toml:"format_version"`
	Snapshot      model.Snapshot `toml:"snapshot"`
}

// Marshal encodes s as a TOML document.
func Marshal(s *model.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	doc := document{FormatVersion: FormatVersion, Snapshot: *s}
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a document written by Marshal. It does not check that
// the tree is valid; Restore does.
func Unmarshal(data []byte) (*model.Snapshot, error) {
	var doc document
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("format version %d: %w", doc.FormatVersion, ErrUnsupportedFormat)
	}
	return &doc.Snapshot, nil
}
