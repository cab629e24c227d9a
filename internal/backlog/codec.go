package backlog

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Decode parses a backlog document and checks its invariant. Items are
// returned sorted by order regardless of their order in the document.
func Decode(data []byte) (Backlog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Backlog{}, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	var b Backlog

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&b); err != nil {
		return Backlog{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if dec.More() {
		return Backlog{}, fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}

	if err := b.Validate(); err != nil {
		return Backlog{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return b.Sorted(), nil
}

// Encode renders b as indented JSON with items sorted by order. The output is
// byte-stable for equal backlogs.
func Encode(b Backlog) ([]byte, error) {
	data, err := json.MarshalIndent(b.Sorted(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding backlog: %w", err)
	}

	return append(data, '\n'), nil
}

// Version identifies the exact bytes of a stored backlog document.
type Version string

// VersionOf returns the BLAKE3-256 digest of data, hex encoded. A missing
// document has the empty version.
func VersionOf(data []byte) Version {
	if data == nil {
		return ""
	}

	sum := blake3.Sum256(data)

	return Version(hex.EncodeToString(sum[:]))
}
