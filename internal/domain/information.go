package domain

import (
	"github.com/google/uuid"
)

// Information is the storage-shaped form of a record
type Information struct {
	ID             uuid.UUID   `json:"id"`
	Description    string      `json:"description"`
	Content        string      `json:"content"`
	ContentType    ContentType `json:"content_type"`
	ParentID       uuid.UUID   `json:"parent_id"`
	ParentRelation string      `json:"parent_relation,omitempty"`
	ContentFromID  uuid.UUID   `json:"content_from_id"`
	SiblingOrder   int64       `json:"sibling_order"`
}

// NewInformation creates an unsaved record. Its ID is assigned on create.
func NewInformation(description, content string) *Information {
	return &Information{
		Description: description,
		Content:     content,
		ContentType: ContentTypeText,
	}
}

// NewChild creates an unsaved record placed under parent
func NewChild(parent uuid.UUID, relation string, order int64) *Information {
	return &Information{
		ContentType:    ContentTypeText,
		ParentID:       parent,
		ParentRelation: relation,
		SiblingOrder:   order,
	}
}

// IsRoot returns true if the record has no parent
func (i *Information) IsRoot() bool {
	return i.ParentID == uuid.Nil
}

// IsClone returns true if the record takes its content from another record
func (i *Information) IsClone() bool {
	return i.ContentFromID != uuid.Nil
}

// IsStored returns true once the record carries an identifier
func (i *Information) IsStored() bool {
	return i.ID != uuid.Nil
}

// Clone returns a copy of the record
func (i *Information) Clone() *Information {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
