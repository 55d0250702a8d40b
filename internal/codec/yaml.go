package codec

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"infostore/internal/repository"
)

// YAMLCodec handles YAML tree import/export
type YAMLCodec struct {
	opts Options
}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec(opts Options) *YAMLCodec {
	return &YAMLCodec{opts: opts}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Import stores the YAML document read from r below parent
func (c *YAMLCodec) Import(ctx context.Context, da repository.DataAccess, parent uuid.UUID, r io.Reader) (*ImportResult, error) {
	var doc Document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return WriteDocument(ctx, da, parent, &doc, c.opts)
}

// Export writes the subtrees of roots as YAML
func (c *YAMLCodec) Export(ctx context.Context, da repository.DataAccess, roots []uuid.UUID, w io.Writer) error {
	doc, err := ReadDocument(ctx, da, roots)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
