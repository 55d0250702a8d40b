package sqldb

import (
	"context"
	"iter"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"infostore/internal/domain"
	"infostore/internal/repository/sqlbuild"
)

// Exists reports whether a row keyed by id is stored
func (p *Provider) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	if id == uuid.Nil {
		return false, nil
	}
	return p.probe(ctx, p.builder.Exists(id))
}

// Get returns the record keyed by id, or nil if there is none
func (p *Provider) Get(ctx context.Context, id uuid.UUID) (*domain.Information, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, nil
	}

	var row informationRow
	found, err := p.scanOne(ctx, p.builder.Get(id), row.scanArgs()...)
	if err != nil || !found {
		return nil, err
	}
	return row.toDomain()
}

// Create inserts info and returns its id. A zero info.ID is replaced with a
// freshly generated one, which is also written back to info. A nil record
// is a no-op returning the zero id.
func (p *Provider) Create(ctx context.Context, info *domain.Information) (uuid.UUID, error) {
	if err := p.checkOpen(); err != nil {
		return uuid.Nil, err
	}
	if info == nil {
		return uuid.Nil, nil
	}

	id := info.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	insert := info.Clone()
	insert.ID = id

	if _, err := p.exec(ctx, p.builder.Insert(insert)); err != nil {
		return uuid.Nil, err
	}
	info.ID = id
	return id, nil
}

// Update writes every field of info except its id. It reports whether
// exactly one row was changed.
func (p *Provider) Update(ctx context.Context, info *domain.Information) (bool, error) {
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	if info == nil || info.ID == uuid.Nil {
		return false, nil
	}

	res, err := p.exec(ctx, p.builder.Update(info))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read affected rows")
	}
	return n == 1, nil
}

// Delete removes exactly the row keyed by id, never its children. A row
// that is still referenced as a parent or clone origin is rejected by the
// backend with repository.ErrConstraint.
func (p *Provider) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	if id == uuid.Nil {
		return false, nil
	}

	res, err := p.exec(ctx, p.builder.Delete(id))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read affected rows")
	}
	return n > 0, nil
}

// HasChildren reports whether any row has id as its parent
func (p *Provider) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	if id == uuid.Nil {
		return false, nil
	}
	return p.probe(ctx, p.builder.HasChildren(id))
}

// Children yields the ids of the immediate children of id in sibling
// order. Rows are read lazily; finish or break the iteration before
// issuing other operations on the provider.
func (p *Provider) Children(ctx context.Context, id uuid.UUID) iter.Seq2[uuid.UUID, error] {
	return p.listBy(ctx, id, p.builder.Children)
}

// Roots yields the ids of every record without a parent in sibling order
func (p *Provider) Roots(ctx context.Context) iter.Seq2[uuid.UUID, error] {
	return func(yield func(uuid.UUID, error) bool) {
		if err := p.checkOpen(); err != nil {
			yield(uuid.Nil, err)
			return
		}
		p.stream(ctx, p.builder.Roots(), yield)
	}
}

// HasContentTo reports whether any row clones id directly
func (p *Provider) HasContentTo(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	if id == uuid.Nil {
		return false, nil
	}
	return p.probe(ctx, p.builder.HasContentTo(id))
}

// ContentTo yields the ids of the direct clones of id
func (p *Provider) ContentTo(ctx context.Context, id uuid.UUID) iter.Seq2[uuid.UUID, error] {
	return p.listBy(ctx, id, p.builder.ContentTo)
}

func (p *Provider) probe(ctx context.Context, st sqlbuild.Statement) (bool, error) {
	var marker int64
	return p.scanOne(ctx, st, &marker)
}

func (p *Provider) listBy(ctx context.Context, id uuid.UUID, build func(uuid.UUID) sqlbuild.Statement) iter.Seq2[uuid.UUID, error] {
	return func(yield func(uuid.UUID, error) bool) {
		if err := p.checkOpen(); err != nil {
			yield(uuid.Nil, err)
			return
		}
		if id == uuid.Nil {
			return
		}
		p.stream(ctx, build(id), yield)
	}
}

// stream yields the single id column of every row selected by st
func (p *Provider) stream(ctx context.Context, st sqlbuild.Statement, yield func(uuid.UUID, error) bool) {
	rows, err := p.query(ctx, st)
	if err != nil {
		yield(uuid.Nil, err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			yield(uuid.Nil, errors.Wrapf(err, "failed to scan %s row", st.Op))
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			yield(uuid.Nil, errors.Wrapf(err, "failed to parse %s id %q", st.Op, raw))
			return
		}
		if !yield(id, nil) {
			return
		}
	}
	if err := rows.Err(); err != nil {
		yield(uuid.Nil, p.classify(st.Op, err))
	}
}
