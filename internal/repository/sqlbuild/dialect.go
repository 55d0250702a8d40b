package sqlbuild

import (
	"database/sql"
	"strconv"
	"strings"
)

// ParamKind is the declared logical type of a bound parameter
type ParamKind int

const (
	KindText ParamKind = iota
	KindInteger
)

// Dialect captures what differs between SQL engines: how parameters are
// written and bound, how identifiers are quoted and how column types are
// spelled. Everything else about a statement is shared.
type Dialect interface {
	// Placeholder returns the statement text referencing a parameter. The
	// position is 1-based in bind order.
	Placeholder(name string, position int) string
	// Param returns the driver argument for a bound value
	Param(name string, kind ParamKind, value any) any
	// Quote returns a quoted identifier
	Quote(ident string) string
	// ColumnType returns the column type used for a parameter kind
	ColumnType(kind ParamKind) string
}

// NamedDialect binds sql.Named parameters written as @name. SQLite drivers
// accept this form.
type NamedDialect struct {
	IntegerType string
}

func (NamedDialect) Placeholder(name string, _ int) string {
	return "@" + name
}

func (NamedDialect) Param(name string, kind ParamKind, value any) any {
	return sql.Named(name, normalize(kind, value))
}

func (NamedDialect) Quote(ident string) string {
	return quoteDouble(ident)
}

func (d NamedDialect) ColumnType(kind ParamKind) string {
	if kind == KindInteger {
		if d.IntegerType != "" {
			return d.IntegerType
		}
		return "INTEGER"
	}
	return "TEXT"
}

// OrdinalDialect binds positional parameters written as $1, $2, ...
// PostgreSQL drivers accept this form.
type OrdinalDialect struct {
	IntegerType string
}

func (OrdinalDialect) Placeholder(_ string, position int) string {
	return "$" + strconv.Itoa(position)
}

func (OrdinalDialect) Param(_ string, kind ParamKind, value any) any {
	return normalize(kind, value)
}

func (OrdinalDialect) Quote(ident string) string {
	return quoteDouble(ident)
}

func (d OrdinalDialect) ColumnType(kind ParamKind) string {
	if kind == KindInteger {
		if d.IntegerType != "" {
			return d.IntegerType
		}
		return "BIGINT"
	}
	return "TEXT"
}

// normalize coerces values to the driver type of their declared kind.
// nil stays nil and binds as NULL.
func normalize(kind ParamKind, value any) any {
	if value == nil {
		return nil
	}
	switch kind {
	case KindInteger:
		switch v := value.(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		}
	case KindText:
		if s, ok := value.(interface{ String() string }); ok {
			return s.String()
		}
	}
	return value
}

func quoteDouble(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
