// Package sqlbuild turns logical Information operations into parameterized
// statements. Statement text is identical across backends apart from what a
// Dialect decides: placeholders, parameter binding, quoting and column types.
package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"infostore/internal/domain"
	"infostore/internal/repository/naming"
)

// Statement is ready-to-execute SQL with its bound arguments
type Statement struct {
	Op   string
	Text string
	Args []any
}

// Builder builds statements for one dialect and naming
type Builder struct {
	dialect Dialect
	names   naming.Provider
}

// New creates a Builder
func New(dialect Dialect, names naming.Provider) *Builder {
	if names == nil {
		names = naming.Default()
	}
	return &Builder{dialect: dialect, names: names}
}

// Names returns the naming provider used by the builder
func (b *Builder) Names() naming.Provider {
	return b.names
}

// params accumulates bound arguments. A name bound twice reuses its
// placeholder.
type params struct {
	dialect Dialect
	args    []any
	bound   map[string]string
}

func (b *Builder) newParams() *params {
	return &params{dialect: b.dialect, bound: make(map[string]string)}
}

func (p *params) bind(name string, kind ParamKind, value any) string {
	if ph, ok := p.bound[name]; ok {
		return ph
	}
	p.args = append(p.args, p.dialect.Param(name, kind, value))
	ph := p.dialect.Placeholder(name, len(p.args))
	p.bound[name] = ph
	return ph
}

func (b *Builder) statement(op, text string, p *params) Statement {
	st := Statement{Op: op, Text: text}
	if p != nil {
		st.Args = p.args
	}
	return st
}

func (b *Builder) table() string {
	return b.dialect.Quote(b.names.Table())
}

func (b *Builder) col(c naming.Column) string {
	return b.dialect.Quote(b.names.Column(c))
}

// idValue encodes an identifier column value. The zero id is stored as NULL.
func idValue(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}

// columnKind returns the parameter kind of a logical column
func columnKind(c naming.Column) ParamKind {
	if c == naming.ColumnSiblingOrder {
		return KindInteger
	}
	return KindText
}

// columnValue returns the stored value of a logical column
func columnValue(c naming.Column, info *domain.Information) any {
	switch c {
	case naming.ColumnID:
		return info.ID.String()
	case naming.ColumnDescription:
		return info.Description
	case naming.ColumnContent:
		return info.Content
	case naming.ColumnContentType:
		return info.ContentType.String()
	case naming.ColumnParentID:
		return idValue(info.ParentID)
	case naming.ColumnParentRelation:
		return info.ParentRelation
	case naming.ColumnContentFromID:
		return idValue(info.ContentFromID)
	case naming.ColumnSiblingOrder:
		return info.SiblingOrder
	}
	return nil
}

// SelectColumns returns the column list used by Get. Scanners must read
// columns in naming.Columns order.
func (b *Builder) SelectColumns() string {
	cols := make([]string, len(naming.Columns))
	for i, c := range naming.Columns {
		cols[i] = b.col(c)
	}
	return strings.Join(cols, ", ")
}

// ============================================================================
// Schema
// ============================================================================

// CreateTable returns the idempotent table definition. Both references are
// restricting foreign keys: a referenced row can be neither deleted nor
// re-keyed.
func (b *Builder) CreateTable() Statement {
	d := b.dialect
	text := d.ColumnType(KindText)
	fk := func(c naming.Column) string {
		return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE RESTRICT ON UPDATE RESTRICT",
			d.Quote(fmt.Sprintf("FK_%s_%s", b.names.Table(), b.names.Column(c))),
			b.col(c), b.table(), b.col(naming.ColumnID))
	}

	lines := []string{
		fmt.Sprintf("%s %s NOT NULL PRIMARY KEY", b.col(naming.ColumnID), text),
		fmt.Sprintf("%s %s NOT NULL DEFAULT ''", b.col(naming.ColumnDescription), text),
		fmt.Sprintf("%s %s NOT NULL DEFAULT ''", b.col(naming.ColumnContent), text),
		fmt.Sprintf("%s %s NOT NULL DEFAULT '%s'", b.col(naming.ColumnContentType), text, domain.ContentTypeText),
		fmt.Sprintf("%s %s NULL", b.col(naming.ColumnParentID), text),
		fmt.Sprintf("%s %s NOT NULL DEFAULT ''", b.col(naming.ColumnParentRelation), text),
		fmt.Sprintf("%s %s NULL", b.col(naming.ColumnContentFromID), text),
		fmt.Sprintf("%s %s NOT NULL DEFAULT 0", b.col(naming.ColumnSiblingOrder), d.ColumnType(KindInteger)),
		fk(naming.ColumnParentID),
		fk(naming.ColumnContentFromID),
	}

	return b.statement("create-table", fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		b.table(), strings.Join(lines, ",\n\t")), nil)
}

// CreateIndexes returns the idempotent supporting index definitions
func (b *Builder) CreateIndexes() []Statement {
	return []Statement{
		b.statement("create-index", fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s)",
			b.dialect.Quote(b.names.Index(naming.IndexParentOrder)), b.table(),
			b.col(naming.ColumnParentID), b.col(naming.ColumnSiblingOrder)), nil),
		b.statement("create-index", fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			b.dialect.Quote(b.names.Index(naming.IndexContentFrom)), b.table(),
			b.col(naming.ColumnContentFromID)), nil),
	}
}

// ============================================================================
// Single-row operations
// ============================================================================

// Exists selects a marker row when id is stored
func (b *Builder) Exists(id uuid.UUID) Statement {
	return b.matchOne("exists", "SELECT 1 FROM %s WHERE %s = %s LIMIT 1", naming.ColumnID, id)
}

// Get selects every column of the row keyed by id
func (b *Builder) Get(id uuid.UUID) Statement {
	p := b.newParams()
	return b.statement("get", fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		b.SelectColumns(), b.table(), b.col(naming.ColumnID),
		p.bind(b.names.Column(naming.ColumnID), KindText, id.String())), p)
}

// ContentFromOf selects the clone-origin id of the row keyed by id
func (b *Builder) ContentFromOf(id uuid.UUID) Statement {
	p := b.newParams()
	return b.statement("content-from", fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		b.col(naming.ColumnContentFromID), b.table(), b.col(naming.ColumnID),
		p.bind(b.names.Column(naming.ColumnID), KindText, id.String())), p)
}

// Insert inserts every column of info. info.ID must already be set.
func (b *Builder) Insert(info *domain.Information) Statement {
	p := b.newParams()
	cols := make([]string, len(naming.Columns))
	values := make([]string, len(naming.Columns))
	for i, c := range naming.Columns {
		cols[i] = b.col(c)
		values[i] = p.bind(b.names.Column(c), columnKind(c), columnValue(c, info))
	}
	return b.statement("create", fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		b.table(), strings.Join(cols, ", "), strings.Join(values, ", ")), p)
}

// Update sets every column except the id on the row keyed by info.ID
func (b *Builder) Update(info *domain.Information) Statement {
	p := b.newParams()
	var sets []string
	for _, c := range naming.Columns {
		if c == naming.ColumnID {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s", b.col(c),
			p.bind(b.names.Column(c), columnKind(c), columnValue(c, info))))
	}
	where := p.bind(b.names.Column(naming.ColumnID), KindText, info.ID.String())
	return b.statement("update", fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		b.table(), strings.Join(sets, ", "), b.col(naming.ColumnID), where), p)
}

// Delete deletes exactly the row keyed by id
func (b *Builder) Delete(id uuid.UUID) Statement {
	return b.matchOne("delete", "DELETE FROM %s WHERE %s = %s", naming.ColumnID, id)
}

// DeleteMany deletes every row whose id is listed
func (b *Builder) DeleteMany(ids []uuid.UUID) Statement {
	p := b.newParams()
	phs := make([]string, len(ids))
	for i, id := range ids {
		phs[i] = p.bind(fmt.Sprintf("%s%d", b.names.Column(naming.ColumnID), i), KindText, id.String())
	}
	return b.statement("delete-many", fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		b.table(), b.col(naming.ColumnID), strings.Join(phs, ", ")), p)
}

// ============================================================================
// Relation listings
// ============================================================================

// HasChildren selects a marker row when id has at least one child
func (b *Builder) HasChildren(id uuid.UUID) Statement {
	return b.matchOne("has-children", "SELECT 1 FROM %s WHERE %s = %s LIMIT 1", naming.ColumnParentID, id)
}

// Children selects the ids of the immediate children of id in sibling order
func (b *Builder) Children(id uuid.UUID) Statement {
	return b.listBy("children", naming.ColumnParentID, id)
}

// Roots selects the ids of every record without a parent in sibling order
func (b *Builder) Roots() Statement {
	return b.statement("roots", fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NULL ORDER BY %s, %s",
		b.col(naming.ColumnID), b.table(), b.col(naming.ColumnParentID),
		b.col(naming.ColumnSiblingOrder), b.col(naming.ColumnID)), nil)
}

// HasContentTo selects a marker row when id is cloned by at least one record
func (b *Builder) HasContentTo(id uuid.UUID) Statement {
	return b.matchOne("has-content-to", "SELECT 1 FROM %s WHERE %s = %s LIMIT 1", naming.ColumnContentFromID, id)
}

// ContentTo selects the ids of the direct clones of id
func (b *Builder) ContentTo(id uuid.UUID) Statement {
	return b.listBy("content-to", naming.ColumnContentFromID, id)
}

func (b *Builder) matchOne(op, format string, c naming.Column, id uuid.UUID) Statement {
	p := b.newParams()
	return b.statement(op, fmt.Sprintf(format, b.table(), b.col(c),
		p.bind(b.names.Column(c), KindText, id.String())), p)
}

func (b *Builder) listBy(op string, c naming.Column, id uuid.UUID) Statement {
	p := b.newParams()
	return b.statement(op, fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY %s, %s",
		b.col(naming.ColumnID), b.table(), b.col(c),
		p.bind(b.names.Column(c), KindText, id.String()),
		b.col(naming.ColumnSiblingOrder), b.col(naming.ColumnID)), p)
}
