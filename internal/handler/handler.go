package handler

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"infostore/internal/access"
	"infostore/internal/codec"
	"infostore/internal/domain"
	"infostore/internal/information"
	"infostore/internal/repository"
)

// InformationHandler handles information API requests
type InformationHandler struct {
	point *access.Point
	mu    sync.Mutex
}

// NewInformationHandler creates a handler resolving its store through point
func NewInformationHandler(point *access.Point) *InformationHandler {
	return &InformationHandler{point: point}
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RecordResponse is a stored record and, for clones, the content resolved
// through its clone chain
type RecordResponse struct {
	*domain.Information
	EffectiveContent     *string             `json:"effective_content,omitempty"`
	EffectiveContentType *domain.ContentType `json:"effective_content_type,omitempty"`
}

// IDsResponse lists record ids
type IDsResponse struct {
	IDs []uuid.UUID `json:"ids"`
}

// OriginResponse is the end of a clone chain. Origin is omitted for chains
// that loop or break.
type OriginResponse struct {
	ID     uuid.UUID  `json:"id"`
	Origin *uuid.UUID `json:"origin,omitempty"`
}

// DeleteResponse reports how many rows a delete removed
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// ImportResponse summarizes an import
type ImportResponse struct {
	Created    int                  `json:"created"`
	CloneLinks int                  `json:"clone_links"`
	IDs        map[string]uuid.UUID `json:"ids,omitempty"`
}

// withStore runs fn with exclusive use of the configured store
func (h *InformationHandler) withStore(w http.ResponseWriter, fn func(da repository.DataAccess)) {
	da, err := h.point.Get()
	if err != nil {
		h.writeError(w, "Store unavailable", err.Error(), http.StatusServiceUnavailable)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(da)
}

// ListRoots returns the ids of all root records
func (h *InformationHandler) ListRoots(w http.ResponseWriter, r *http.Request) {
	h.withStore(w, func(da repository.DataAccess) {
		ids, err := repository.Collect(da.Roots(r.Context()))
		if err != nil {
			h.storeError(w, "Failed to list roots", err)
			return
		}
		h.writeJSON(w, IDsResponse{IDs: nonNil(ids)}, http.StatusOK)
	})
}

// GetRecord returns a single record
func (h *InformationHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	h.withStore(w, func(da repository.DataAccess) {
		rec, err := information.Load(r.Context(), h.point, id)
		if err != nil {
			h.storeError(w, "Failed to get record", err)
			return
		}
		if rec == nil {
			h.writeError(w, "Not found", "record "+id.String()+" not found", http.StatusNotFound)
			return
		}

		resp := RecordResponse{Information: &rec.Information}
		if rec.IsClone() {
			content, contentType, err := rec.EffectiveContent(r.Context())
			if err != nil {
				h.storeError(w, "Failed to resolve content", err)
				return
			}
			resp.EffectiveContent, resp.EffectiveContentType = &content, &contentType
		}
		h.writeJSON(w, resp, http.StatusOK)
	})
}

// CreateRecord creates a new record. A missing id is generated.
func (h *InformationHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var info domain.Information
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	h.withStore(w, func(da repository.DataAccess) {
		if _, err := da.Create(r.Context(), &info); err != nil {
			h.storeError(w, "Failed to create record", err)
			return
		}
		h.writeJSON(w, info, http.StatusCreated)
	})
}

// UpdateRecord replaces every field of an existing record but its id
func (h *InformationHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var info domain.Information
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if info.ID != uuid.Nil && info.ID != id {
		h.writeError(w, "Invalid request body", "id does not match the path", http.StatusBadRequest)
		return
	}
	info.ID = id

	h.withStore(w, func(da repository.DataAccess) {
		updated, err := da.Update(r.Context(), &info)
		if err != nil {
			h.storeError(w, "Failed to update record", err)
			return
		}
		if !updated {
			h.writeError(w, "Not found", "record "+id.String()+" not found", http.StatusNotFound)
			return
		}
		h.writeJSON(w, info, http.StatusOK)
	})
}

// DeleteRecord deletes a record, or its whole subtree with ?cascade=true
func (h *InformationHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	cascade, err := boolParam(r, "cascade")
	if err != nil {
		h.writeError(w, "Invalid cascade parameter", err.Error(), http.StatusBadRequest)
		return
	}

	h.withStore(w, func(da repository.DataAccess) {
		var n int64
		if cascade {
			n, err = da.DeleteAll(r.Context(), id)
		} else {
			var deleted bool
			if deleted, err = da.Delete(r.Context(), id); deleted {
				n = 1
			}
		}
		if err != nil {
			log.WithFields(log.Fields{"id": id, "deleted": n}).Warn("delete failed")
			h.storeError(w, "Failed to delete record", err)
			return
		}
		if n == 0 {
			h.writeError(w, "Not found", "record "+id.String()+" not found", http.StatusNotFound)
			return
		}
		h.writeJSON(w, DeleteResponse{Deleted: n}, http.StatusOK)
	})
}

// ListChildren returns the ids of a record's immediate children
func (h *InformationHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	h.listRelated(w, r, "children", repository.DataAccess.Children)
}

// ListClones returns the ids of a record's direct clones
func (h *InformationHandler) ListClones(w http.ResponseWriter, r *http.Request) {
	h.listRelated(w, r, "clones", repository.DataAccess.ContentTo)
}

type relatedFunc func(repository.DataAccess, context.Context, uuid.UUID) iter.Seq2[uuid.UUID, error]

func (h *InformationHandler) listRelated(w http.ResponseWriter, r *http.Request, what string, list relatedFunc) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	h.withStore(w, func(da repository.DataAccess) {
		exists, err := da.Exists(r.Context(), id)
		if err != nil {
			h.storeError(w, "Failed to list "+what, err)
			return
		}
		if !exists {
			h.writeError(w, "Not found", "record "+id.String()+" not found", http.StatusNotFound)
			return
		}
		ids, err := repository.Collect(list(da, r.Context(), id))
		if err != nil {
			h.storeError(w, "Failed to list "+what, err)
			return
		}
		h.writeJSON(w, IDsResponse{IDs: nonNil(ids)}, http.StatusOK)
	})
}

// GetOrigin resolves the clone chain of a record
func (h *InformationHandler) GetOrigin(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	h.withStore(w, func(da repository.DataAccess) {
		exists, err := da.Exists(r.Context(), id)
		if err != nil {
			h.storeError(w, "Failed to resolve origin", err)
			return
		}
		if !exists {
			h.writeError(w, "Not found", "record "+id.String()+" not found", http.StatusNotFound)
			return
		}
		origin, err := da.ContentFrom(r.Context(), id)
		if err != nil {
			h.storeError(w, "Failed to resolve origin", err)
			return
		}

		resp := OriginResponse{ID: id}
		if origin != uuid.Nil {
			resp.Origin = &origin
		}
		h.writeJSON(w, resp, http.StatusOK)
	})
}

// Export writes the subtree of ?root, or every root, as a document
func (h *InformationHandler) Export(w http.ResponseWriter, r *http.Request) {
	c := h.codec(w, r, codec.Options{})
	if c == nil {
		return
	}
	var roots []uuid.UUID
	if raw := r.URL.Query().Get("root"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.writeError(w, "Invalid root", err.Error(), http.StatusBadRequest)
			return
		}
		roots = []uuid.UUID{id}
	}

	h.withStore(w, func(da repository.DataAccess) {
		if roots == nil {
			var err error
			if roots, err = repository.Collect(da.Roots(r.Context())); err != nil {
				h.storeError(w, "Failed to list roots", err)
				return
			}
		}

		if c.Format() == "json" {
			w.Header().Set("Content-Type", "application/json")
		} else {
			w.Header().Set("Content-Type", "application/x-yaml")
		}
		w.Header().Set("Content-Disposition", "attachment; filename=information."+c.Format())

		if err := c.Export(r.Context(), da, roots, w); err != nil {
			log.WithField("err", err).Error("failed to export")
			// Can't write error response as we already set headers
		}
	})
}

// Import stores a document below ?parent, or as new roots
func (h *InformationHandler) Import(w http.ResponseWriter, r *http.Request) {
	fresh, err := boolParam(r, "fresh_ids")
	if err != nil {
		h.writeError(w, "Invalid fresh_ids parameter", err.Error(), http.StatusBadRequest)
		return
	}
	c := h.codec(w, r, codec.Options{FreshIDs: fresh})
	if c == nil {
		return
	}
	parent := uuid.Nil
	if raw := r.URL.Query().Get("parent"); raw != "" {
		if parent, err = uuid.Parse(raw); err != nil {
			h.writeError(w, "Invalid parent", err.Error(), http.StatusBadRequest)
			return
		}
	}

	h.withStore(w, func(da repository.DataAccess) {
		result, err := c.Import(r.Context(), da, parent, r.Body)
		if err != nil {
			if result == nil {
				h.writeError(w, "Invalid document", err.Error(), http.StatusBadRequest)
				return
			}
			log.WithFields(log.Fields{"created": result.Created}).Warn("import stopped part-way")
			h.storeError(w, "Failed to import", err)
			return
		}
		h.writeJSON(w, ImportResponse{
			Created:    result.Created,
			CloneLinks: result.CloneLinks,
			IDs:        result.IDs,
		}, http.StatusCreated)
	})
}

// Helper methods

func (h *InformationHandler) codec(w http.ResponseWriter, r *http.Request, opts codec.Options) codec.Codec {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "yaml"
	}
	c := codec.ForFormat(format, opts)
	if c == nil {
		h.writeError(w, "Unsupported format", format, http.StatusBadRequest)
	}
	return c
}

func (h *InformationHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, "Invalid record ID", err.Error(), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// storeError maps store failures to a status code
func (h *InformationHandler) storeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case repository.IsDuplicateKey(err), repository.IsConstraint(err):
		h.writeError(w, msg, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrConnectionClosed), errors.Is(err, repository.ErrDataAccessUnconfigured):
		h.writeError(w, msg, err.Error(), http.StatusServiceUnavailable)
	default:
		log.WithField("err", err).Error(msg)
		h.writeError(w, msg, err.Error(), http.StatusInternalServerError)
	}
}

func (h *InformationHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithField("err", err).Warn("failed to encode JSON")
	}
}

func (h *InformationHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.WithField("err", err).Warn("failed to encode error response")
	}
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
