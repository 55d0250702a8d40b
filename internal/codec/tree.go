package codec

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"infostore/internal/domain"
	"infostore/internal/repository"
)

// Document is the serialized form of a forest
type Document struct {
	Records []Node `yaml:"records" json:"records"`
}

// Node is one serialized record and its children
type Node struct {
	ID          string             `yaml:"id,omitempty" json:"id,omitempty"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Content     string             `yaml:"content,omitempty" json:"content,omitempty"`
	ContentType domain.ContentType `yaml:"content_type,omitempty" json:"content_type,omitempty"`
	Relation    string             `yaml:"relation,omitempty" json:"relation,omitempty"`
	Order       int64              `yaml:"order,omitempty" json:"order,omitempty"`
	ContentFrom string             `yaml:"content_from,omitempty" json:"content_from,omitempty"`
	Children    []Node             `yaml:"children,omitempty" json:"children,omitempty"`
}

// ImportResult summarizes an import
type ImportResult struct {
	Created    int
	CloneLinks int
	// IDs maps document ids to stored ids when they differ
	IDs map[string]uuid.UUID
}

// ReadDocument loads the subtrees of roots. Children are collected before
// descending so that no listing is open while the next level is read.
func ReadDocument(ctx context.Context, da repository.DataAccess, roots []uuid.UUID) (*Document, error) {
	doc := &Document{Records: make([]Node, 0, len(roots))}
	for _, id := range roots {
		node, err := readNode(ctx, da, id)
		if err != nil {
			return nil, err
		}
		doc.Records = append(doc.Records, *node)
	}
	return doc, nil
}

func readNode(ctx context.Context, da repository.DataAccess, id uuid.UUID) (*Node, error) {
	info, err := da.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", id, err)
	}
	if info == nil {
		return nil, fmt.Errorf("record %s not found", id)
	}

	node := &Node{
		ID:          info.ID.String(),
		Description: info.Description,
		Content:     info.Content,
		ContentType: info.ContentType,
		Relation:    info.ParentRelation,
		Order:       info.SiblingOrder,
	}
	if info.IsClone() {
		node.ContentFrom = info.ContentFromID.String()
	}

	children, err := repository.Collect(da.Children(ctx, id))
	if err != nil {
		return nil, fmt.Errorf("failed to list children of %s: %w", id, err)
	}
	for _, child := range children {
		c, err := readNode(ctx, da, child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, *c)
	}
	return node, nil
}

// cloneLink is a clone reference deferred to the second import pass
type cloneLink struct {
	id   uuid.UUID
	from string
}

type writer struct {
	da     repository.DataAccess
	opts   Options
	result *ImportResult
	links  []cloneLink
}

// WriteDocument stores doc below parent
func WriteDocument(ctx context.Context, da repository.DataAccess, parent uuid.UUID, doc *Document, opts Options) (*ImportResult, error) {
	w := &writer{
		da:     da,
		opts:   opts,
		result: &ImportResult{IDs: make(map[string]uuid.UUID)},
	}

	for i := range doc.Records {
		if err := w.create(ctx, parent, &doc.Records[i]); err != nil {
			return w.result, err
		}
	}
	if err := w.link(ctx); err != nil {
		return w.result, err
	}
	return w.result, nil
}

func (w *writer) create(ctx context.Context, parent uuid.UUID, node *Node) error {
	info := &domain.Information{
		Description:    node.Description,
		Content:        node.Content,
		ContentType:    node.ContentType,
		ParentID:       parent,
		ParentRelation: node.Relation,
		SiblingOrder:   node.Order,
	}
	if node.ID != "" && !w.opts.FreshIDs {
		id, err := uuid.Parse(node.ID)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", node.ID, err)
		}
		info.ID = id
	}

	id, err := w.da.Create(ctx, info)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", node.Description, err)
	}
	w.result.Created++
	if node.ID != "" && node.ID != id.String() {
		w.result.IDs[node.ID] = id
	}
	if node.ContentFrom != "" {
		w.links = append(w.links, cloneLink{id: id, from: node.ContentFrom})
	}

	for i := range node.Children {
		if err := w.create(ctx, id, &node.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) link(ctx context.Context) error {
	for _, l := range w.links {
		from, ok := w.result.IDs[l.from]
		if !ok {
			parsed, err := uuid.Parse(l.from)
			if err != nil {
				return fmt.Errorf("invalid content_from %q: %w", l.from, err)
			}
			from = parsed
		}

		info, err := w.da.Get(ctx, l.id)
		if err != nil {
			return fmt.Errorf("failed to reload %s: %w", l.id, err)
		}
		if info == nil {
			return fmt.Errorf("record %s vanished during import", l.id)
		}
		info.ContentFromID = from
		if _, err := w.da.Update(ctx, info); err != nil {
			return fmt.Errorf("failed to link %s to %s: %w", l.id, from, err)
		}
		w.result.CloneLinks++
	}
	return nil
}
