package information

import (
	"context"
	"iter"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"infostore/internal/access"
	"infostore/internal/domain"
	"infostore/internal/repository"
)

// relation is a resolved reference together with the id it was resolved
// from. A valid relation with a nil value records that nothing was found.
type relation struct {
	id    uuid.UUID
	value *Record
	valid bool
}

func (r *relation) hit(id uuid.UUID) (*Record, bool) {
	if r.valid && r.id == id {
		return r.value, true
	}
	return nil, false
}

func (r *relation) store(id uuid.UUID, value *Record) {
	r.id, r.value, r.valid = id, value, true
}

func (r *relation) reset() {
	*r = relation{}
}

// Record is an Information bound to an access point
type Record struct {
	domain.Information

	point     *access.Point
	parent    relation
	cloneFrom relation
}

// New wraps a copy of info. A nil info yields an empty unsaved record.
func New(point *access.Point, info *domain.Information) *Record {
	r := &Record{point: point}
	if info != nil {
		r.Information = *info
	}
	return r
}

// Load reads the record keyed by id. It returns nil without error when no
// such record is stored.
func Load(ctx context.Context, point *access.Point, id uuid.UUID) (*Record, error) {
	da, err := point.Get()
	if err != nil {
		return nil, err
	}
	info, err := da.Get(ctx, id)
	if err != nil || info == nil {
		return nil, err
	}
	return New(point, info), nil
}

func (r *Record) access() (repository.DataAccess, error) {
	return r.point.Get()
}

// Parent returns the record referenced by ParentID, or nil for a root or a
// dangling reference
func (r *Record) Parent(ctx context.Context) (*Record, error) {
	return r.resolve(ctx, &r.parent, r.ParentID)
}

// CloneFrom returns the record referenced by ContentFromID, or nil when the
// record is not a clone or the reference is dangling
func (r *Record) CloneFrom(ctx context.Context) (*Record, error) {
	return r.resolve(ctx, &r.cloneFrom, r.ContentFromID)
}

func (r *Record) resolve(ctx context.Context, cache *relation, id uuid.UUID) (*Record, error) {
	if value, ok := cache.hit(id); ok {
		return value, nil
	}
	if id == uuid.Nil {
		cache.store(id, nil)
		return nil, nil
	}

	resolved, err := Load(ctx, r.point, id)
	if err != nil {
		return nil, err
	}
	cache.store(id, resolved)
	return resolved, nil
}

// DiscardCache forgets both resolved relations
func (r *Record) DiscardCache() {
	r.parent.reset()
	r.cloneFrom.reset()
}

// Load re-reads the stored fields of the record. It reports false and
// leaves the record untouched when the record is not stored.
func (r *Record) Load(ctx context.Context) (bool, error) {
	da, err := r.access()
	if err != nil {
		return false, err
	}
	info, err := da.Get(ctx, r.ID)
	if err != nil || info == nil {
		return false, err
	}
	r.Information = *info
	return true, nil
}

// Save updates the stored record, or creates it when it has no id yet or
// no row with its id exists. A generated id is written back to the record.
func (r *Record) Save(ctx context.Context) error {
	da, err := r.access()
	if err != nil {
		return err
	}

	if r.ID != uuid.Nil {
		updated, err := da.Update(ctx, &r.Information)
		if err != nil {
			return errors.Wrapf(err, "save %s", r.ID)
		}
		if updated {
			return nil
		}
	}

	if _, err := da.Create(ctx, &r.Information); err != nil {
		return errors.Wrap(err, "save new record")
	}
	return nil
}

// Delete removes the stored row of this record only
func (r *Record) Delete(ctx context.Context) (bool, error) {
	da, err := r.access()
	if err != nil {
		return false, err
	}
	return da.Delete(ctx, r.ID)
}

// DeleteAll removes this record and all of its transitive children
func (r *Record) DeleteAll(ctx context.Context) (int64, error) {
	da, err := r.access()
	if err != nil {
		return 0, err
	}
	return da.DeleteAll(ctx, r.ID)
}

// HasChildren reports whether any record names this one as its parent
func (r *Record) HasChildren(ctx context.Context) (bool, error) {
	da, err := r.access()
	if err != nil {
		return false, err
	}
	return da.HasChildren(ctx, r.ID)
}

// Children yields the ids of the immediate children in sibling order
func (r *Record) Children(ctx context.Context) iter.Seq2[uuid.UUID, error] {
	return r.sequence(func(da repository.DataAccess) iter.Seq2[uuid.UUID, error] {
		return da.Children(ctx, r.ID)
	})
}

// Clones yields the ids of records whose content comes directly from this
// one
func (r *Record) Clones(ctx context.Context) iter.Seq2[uuid.UUID, error] {
	return r.sequence(func(da repository.DataAccess) iter.Seq2[uuid.UUID, error] {
		return da.ContentTo(ctx, r.ID)
	})
}

func (r *Record) sequence(list func(repository.DataAccess) iter.Seq2[uuid.UUID, error]) iter.Seq2[uuid.UUID, error] {
	return func(yield func(uuid.UUID, error) bool) {
		da, err := r.access()
		if err != nil {
			yield(uuid.Nil, err)
			return
		}
		for id, err := range list(da) {
			if !yield(id, err) {
				return
			}
		}
	}
}

// Origin returns the record at the end of the clone chain. A record that is
// not a clone is its own origin. Nil is returned for a chain that loops or
// reaches a missing record.
func (r *Record) Origin(ctx context.Context) (*Record, error) {
	if !r.IsClone() {
		return r, nil
	}
	da, err := r.access()
	if err != nil {
		return nil, err
	}
	// An unsaved clone resolves from the record it points at.
	start := r.ID
	if !r.IsStored() {
		start = r.ContentFromID
	}
	id, err := da.ContentFrom(ctx, start)
	if err != nil || id == uuid.Nil {
		return nil, err
	}
	return Load(ctx, r.point, id)
}

// EffectiveContent returns the content and type of the clone origin. The
// record's own stored content is used when it is not a clone or when its
// chain cannot be resolved.
func (r *Record) EffectiveContent(ctx context.Context) (string, domain.ContentType, error) {
	origin, err := r.Origin(ctx)
	if err != nil {
		return "", domain.ContentTypeText, err
	}
	if origin == nil {
		return r.Content, r.ContentType, nil
	}
	return origin.Content, origin.ContentType, nil
}
