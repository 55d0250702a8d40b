package sqldb

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"infostore/internal/domain"
)

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToID parses a nullable identifier column. NULL and empty text are the
// zero id.
func nullToID(ns sql.NullString) (uuid.UUID, error) {
	s := nullToString(ns)
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

// ============================================================================
// Information Row Scanner
// ============================================================================

// informationRow holds all columns from an Information query for scanning
type informationRow struct {
	ID             string
	Description    sql.NullString
	Content        sql.NullString
	ContentType    sql.NullString
	ParentID       sql.NullString
	ParentRelation sql.NullString
	ContentFromID  sql.NullString
	SiblingOrder   sql.NullInt64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match naming.Columns order exactly:
// id, description, content, content type, parent id, parent relation,
// content from id, sibling order
func (r *informationRow) scanArgs() []any {
	return []any{
		&r.ID,             // 1
		&r.Description,    // 2
		&r.Content,        // 3
		&r.ContentType,    // 4
		&r.ParentID,       // 5
		&r.ParentRelation, // 6
		&r.ContentFromID,  // 7
		&r.SiblingOrder,   // 8
	}
}

// toDomain converts the scanned row to a domain.Information
func (r *informationRow) toDomain() (*domain.Information, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "parse id %q", r.ID)
	}
	parentID, err := nullToID(r.ParentID)
	if err != nil {
		return nil, errors.Wrapf(err, "parse parent id of %s", id)
	}
	contentFromID, err := nullToID(r.ContentFromID)
	if err != nil {
		return nil, errors.Wrapf(err, "parse content-from id of %s", id)
	}

	return &domain.Information{
		ID:             id,
		Description:    nullToString(r.Description),
		Content:        nullToString(r.Content),
		ContentType:    domain.ParseContentType(nullToString(r.ContentType)),
		ParentID:       parentID,
		ParentRelation: nullToString(r.ParentRelation),
		ContentFromID:  contentFromID,
		SiblingOrder:   r.SiblingOrder.Int64,
	}, nil
}

// pages splits ids into consecutive slices of at most size elements
func pages(ids []uuid.UUID, size int) [][]uuid.UUID {
	if size <= 0 {
		size = len(ids)
	}
	var out [][]uuid.UUID
	for len(ids) > 0 {
		n := min(size, len(ids))
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	return out
}
