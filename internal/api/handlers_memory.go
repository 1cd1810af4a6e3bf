package api

import (
	"errors"
	"net/http"

	"github.com/rootedlabs/trellis/internal/engine"
	"github.com/rootedlabs/trellis/internal/models"
	"github.com/rootedlabs/trellis/internal/store"
)

type MemoryHandler struct {
	eng   *engine.Engine
	roots *store.RootStore
	nodes *store.NodeStore
}

func NewMemoryHandler(eng *engine.Engine, roots *store.RootStore, nodes *store.NodeStore) *MemoryHandler {
	return &MemoryHandler{eng: eng, roots: roots, nodes: nodes}
}

// Process handles POST /memory/process: run pre-extracted candidates through
// the lifecycle without generating a reply.
func (h *MemoryHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	for _, c := range req.Candidates {
		if !c.Category.IsValid() || !c.TimeScale.IsValid() || !c.Importance.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid candidate enum value")
			return
		}
		if c.CoreContent == "" {
			writeError(w, http.StatusBadRequest, "core_content is required")
			return
		}
	}

	uid := userID(r)
	if _, _, err := h.eng.Decay(r.Context(), uid); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stats, err := h.eng.ProcessCandidates(r.Context(), uid, req.Candidates)
	if err != nil {
		if errors.Is(err, engine.ErrVectorWrite) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Retrieve handles POST /memory/retrieve: assemble the four-tier map for a
// query without processing any candidates.
func (h *MemoryHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req models.RetrieveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	uid := userID(r)
	if _, _, err := h.eng.Decay(r.Context(), uid); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	mm, err := h.eng.Retrieve(r.Context(), uid, req.Query, req.Domains)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mm)
}

// Decay handles POST /memory/decay: run the sweep on demand.
func (h *MemoryHandler) Decay(w http.ResponseWriter, r *http.Request) {
	expired, demoted, err := h.eng.Decay(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.DecayResponse{Expired: expired, Demoted: demoted})
}

// Profile handles GET /profile: the user's persona anchor, or 404 if none.
func (h *MemoryHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.roots.GetProfile(userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "no profile for user")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Stats handles GET /memory/stats: per-tier node counts for the user.
func (h *MemoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.nodes.CountByUser(userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
