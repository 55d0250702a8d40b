// Package naming maps the logical Information schema onto physical names.
//
// Statement templates only ever ask a Provider for names, so a store can
// rename its table, columns or indexes without touching any SQL.
package naming

import (
	"fmt"
	"regexp"
)

// Column identifies a logical column of the Information table
type Column int

const (
	ColumnID Column = iota
	ColumnDescription
	ColumnContent
	ColumnContentType
	ColumnParentID
	ColumnParentRelation
	ColumnContentFromID
	ColumnSiblingOrder
)

// Columns lists every logical column in storage order
var Columns = []Column{
	ColumnID,
	ColumnDescription,
	ColumnContent,
	ColumnContentType,
	ColumnParentID,
	ColumnParentRelation,
	ColumnContentFromID,
	ColumnSiblingOrder,
}

var defaultColumns = map[Column]string{
	ColumnID:             "Id",
	ColumnDescription:    "Description",
	ColumnContent:        "Content",
	ColumnContentType:    "ContentType",
	ColumnParentID:       "ParentId",
	ColumnParentRelation: "ParentRelation",
	ColumnContentFromID:  "ContentFromId",
	ColumnSiblingOrder:   "SiblingOrder",
}

// String returns the default physical name of the column
func (c Column) String() string {
	return defaultColumns[c]
}

// Index identifies a supporting index
type Index int

const (
	// IndexParentOrder covers (ParentId, SiblingOrder) for ordered child listing
	IndexParentOrder Index = iota
	// IndexContentFrom covers ContentFromId for clone listing
	IndexContentFrom
)

// Provider resolves logical schema objects to physical names
type Provider interface {
	Table() string
	Column(c Column) string
	Index(i Index) string
}

// DefaultTable is the physical table name used when none is configured
const DefaultTable = "Information"

// identifierPattern restricts names to plain SQL identifiers. Table and
// column names cannot be bound as parameters, so they are validated instead.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Names is a Provider with optional overrides. The zero value yields the
// default schema.
type Names struct {
	TableName string
	Indexes   map[Index]string
	Overrides map[Column]string
}

// Default returns the default naming
func Default() *Names {
	return &Names{}
}

// Table returns the physical table name
func (n *Names) Table() string {
	if n.TableName != "" {
		return n.TableName
	}
	return DefaultTable
}

// Column returns the physical column name
func (n *Names) Column(c Column) string {
	if name, ok := n.Overrides[c]; ok && name != "" {
		return name
	}
	return defaultColumns[c]
}

// Index returns the physical index name, derived from the table name
// unless overridden
func (n *Names) Index(i Index) string {
	if name, ok := n.Indexes[i]; ok && name != "" {
		return name
	}
	switch i {
	case IndexContentFrom:
		return fmt.Sprintf("IX_%s_%s", n.Table(), n.Column(ColumnContentFromID))
	default:
		return fmt.Sprintf("IX_%s_%s_%s", n.Table(), n.Column(ColumnParentID), n.Column(ColumnSiblingOrder))
	}
}

// Validate checks that every physical name is a plain identifier and that
// no two columns share a name
func Validate(p Provider) error {
	if !identifierPattern.MatchString(p.Table()) {
		return fmt.Errorf("invalid table name %q", p.Table())
	}

	seen := make(map[string]Column, len(Columns))
	for _, c := range Columns {
		name := p.Column(c)
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("invalid column name %q for %s", name, c)
		}
		if other, ok := seen[name]; ok {
			return fmt.Errorf("column name %q used for both %s and %s", name, other, c)
		}
		seen[name] = c
	}

	for _, i := range []Index{IndexParentOrder, IndexContentFrom} {
		if name := p.Index(i); !identifierPattern.MatchString(name) {
			return fmt.Errorf("invalid index name %q", name)
		}
	}
	return nil
}
