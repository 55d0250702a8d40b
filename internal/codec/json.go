package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"infostore/internal/repository"
)

// JSONCodec handles JSON tree import/export
type JSONCodec struct {
	opts Options
}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec(opts Options) *JSONCodec {
	return &JSONCodec{opts: opts}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Import stores the JSON document read from r below parent
func (c *JSONCodec) Import(ctx context.Context, da repository.DataAccess, parent uuid.UUID, r io.Reader) (*ImportResult, error) {
	var doc Document
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return WriteDocument(ctx, da, parent, &doc, c.opts)
}

// Export writes the subtrees of roots as JSON
func (c *JSONCodec) Export(ctx context.Context, da repository.DataAccess, roots []uuid.UUID, w io.Writer) error {
	doc, err := ReadDocument(ctx, da, roots)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
