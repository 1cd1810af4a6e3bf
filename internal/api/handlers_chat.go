package api

import (
	"errors"
	"net/http"

	"github.com/rootedlabs/trellis/internal/engine"
	"github.com/rootedlabs/trellis/internal/models"
	"github.com/rootedlabs/trellis/internal/semantic"
)

type ChatHandler struct {
	eng       *engine.Engine
	analyzer  *semantic.Analyzer
	responder *semantic.Responder
}

func NewChatHandler(eng *engine.Engine, analyzer *semantic.Analyzer, responder *semantic.Responder) *ChatHandler {
	return &ChatHandler{eng: eng, analyzer: analyzer, responder: responder}
}

// Chat handles POST /chat: decay sweep, candidate extraction, lifecycle
// processing, four-tier retrieval, then the grounded reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := r.Context()
	uid := userID(r)

	if _, _, err := h.eng.Decay(ctx, uid); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	candidates, domains := h.analyzer.Extract(ctx, req.Message)

	stats, err := h.eng.ProcessCandidates(ctx, uid, candidates)
	if err != nil {
		if errors.Is(err, engine.ErrVectorWrite) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	mm, err := h.eng.Retrieve(ctx, uid, req.Message, domains)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	reply, err := h.responder.Respond(ctx, req.Message, mm)
	if err != nil {
		writeError(w, http.StatusBadGateway, "response generation failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Response:   reply,
		MemoryUsed: mm,
		Stats:      stats,
	})
}
