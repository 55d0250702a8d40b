package sqldb

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"infostore/internal/repository"
)

// ContentFrom resolves the record that owns the content of id by following
// ContentFromId pointers. It returns id itself when id is not a clone, and
// uuid.Nil when id is zero, the chain reaches a missing row, or the chain
// loops back on itself.
func (p *Provider) ContentFrom(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if err := p.checkOpen(); err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, nil
	}

	visited := map[uuid.UUID]struct{}{id: {}}
	current := id
	for {
		var next sql.NullString
		found, err := p.scanOne(ctx, p.builder.ContentFromOf(current), &next)
		if err != nil {
			return uuid.Nil, err
		}
		if !found {
			return uuid.Nil, nil
		}

		nextID, err := nullToID(next)
		if err != nil {
			return uuid.Nil, errors.Wrapf(err, "parse content-from id of %s", current)
		}
		if nextID == uuid.Nil {
			return current, nil
		}
		if _, seen := visited[nextID]; seen {
			p.log.WithFields(log.Fields{"id": id, "at": nextID}).Debug("clone chain cycle")
			return uuid.Nil, nil
		}
		visited[nextID] = struct{}{}
		current = nextID
	}
}

// DeleteAll removes id and every transitive child and returns the number
// of rows deleted. Levels are deleted deepest first, in pages of at most
// the configured page size. Each page commits on its own: on error the
// rows removed so far stay removed and their count is returned with it.
func (p *Provider) DeleteAll(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := p.checkOpen(); err != nil {
		return 0, err
	}
	if id == uuid.Nil {
		return 0, nil
	}

	levels, err := p.collectLevels(ctx, id)
	if err != nil {
		return 0, err
	}

	var total int64
	for depth := len(levels) - 1; depth >= 0; depth-- {
		for _, page := range pages(levels[depth], p.pageSize) {
			res, err := p.exec(ctx, p.builder.DeleteMany(page))
			if err == nil {
				var n int64
				if n, err = res.RowsAffected(); err == nil {
					total += n
					continue
				}
			}
			cascadeDeletedTotal.WithLabelValues(p.backend.Name()).Add(float64(total))
			p.log.WithFields(log.Fields{
				"root":    id,
				"depth":   depth,
				"deleted": total,
				"err":     err,
			}).Warn("cascading delete stopped part-way; shallower levels remain")
			return total, err
		}
	}

	cascadeDeletedTotal.WithLabelValues(p.backend.Name()).Add(float64(total))
	p.log.WithFields(log.Fields{
		"root":    id,
		"levels":  len(levels),
		"deleted": total,
	}).Debug("cascading delete")
	return total, nil
}

// collectLevels walks the subtree of root breadth first and returns its ids
// grouped by depth, root at depth 0. An id reached twice keeps its first
// depth.
func (p *Provider) collectLevels(ctx context.Context, root uuid.UUID) ([][]uuid.UUID, error) {
	depths := map[uuid.UUID]int{root: 0}
	levels := [][]uuid.UUID{{root}}
	queue := []uuid.UUID{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := repository.Collect(p.Children(ctx, current))
		if err != nil {
			return nil, err
		}

		depth := depths[current] + 1
		for _, child := range children {
			if _, seen := depths[child]; seen {
				continue
			}
			depths[child] = depth
			if depth == len(levels) {
				levels = append(levels, nil)
			}
			levels[depth] = append(levels[depth], child)
			queue = append(queue, child)
		}
	}
	return levels, nil
}
