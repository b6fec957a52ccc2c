package deck

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmptyPath is returned when Load is called without a file path.
var ErrEmptyPath = errors.New("deck file path is empty")

// Load reads a deck file and returns its content as sanitized UTF-8.
//
// Decks come from many simulators and editors, so files occasionally carry
// stray high bytes or truncated multi-byte sequences. Malformed bytes are
// replaced with U+FFFD rather than failing the load; the QC core is
// specified over already-sanitized text and never sees decode errors.
func Load(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided deck path is intentional
	if err != nil {
		return "", fmt.Errorf("failed to read deck file: %w", err)
	}

	return Sanitize(data), nil
}

// Sanitize decodes raw bytes as UTF-8, replacing malformed sequences with
// the Unicode replacement character. It never fails: the UTF-8 decoder in
// replacement mode accepts arbitrary input.
func Sanitize(data []byte) string {
	decoder := unicode.UTF8.NewDecoder()
	clean, _, err := transform.Bytes(decoder, data)
	if err != nil {
		// The replacement decoder does not error on malformed input,
		// but fall back to the raw bytes if it ever does.
		return string(data)
	}
	return string(clean)
}
