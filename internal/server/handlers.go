package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	apperrors "github.com/memodesk/memodesk/internal/errors"
	"github.com/memodesk/memodesk/internal/memo"
)

// --- Helpers ---

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

// appError writes err with the status its code maps to.
func appError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apperrors.AsCode(err)
	switch code {
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	}

	body := map[string]string{"error": err.Error()}
	if code != "" {
		body["code"] = code
	}
	if sug := apperrors.Suggestion(err); sug != "" {
		body["suggestion"] = sug
	}
	jsonResponse(w, status, body)
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(r *http.Request, key string) (int64, error) {
	raw := r.PathValue(key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.Newf(apperrors.CodeInvalidInput, "invalid memo id: %q", raw)
	}
	return id, nil
}

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": s.cfg.Version,
		"name":    s.cfg.Name,
	})
}

// --- Memos ---

func (s *Server) handleListMemos(w http.ResponseWriter, _ *http.Request) {
	memos, err := s.svc.List()
	if err != nil {
		appError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, memos)
}

func (s *Server) handleCreateMemo(w http.ResponseWriter, r *http.Request) {
	var req memo.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	m, err := s.svc.Create(req)
	if err != nil {
		appError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, m)
}

// handleGetMemo answers 200 with a null body when the id is absent.
func (s *Server) handleGetMemo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		appError(w, err)
		return
	}
	m, err := s.svc.Get(id)
	if err != nil {
		appError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMemo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		appError(w, err)
		return
	}
	var req memo.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.ID = id

	m, err := s.svc.Update(req)
	if err != nil {
		appError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMemo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		appError(w, err)
		return
	}
	deleted, err := s.svc.Delete(id)
	if err != nil {
		appError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": deleted})
}

func (s *Server) handleSearchMemos(w http.ResponseWriter, r *http.Request) {
	memos, err := s.svc.Search(r.URL.Query().Get("q"))
	if err != nil {
		appError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, memos)
}

// --- Store ---

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	st, err := s.svc.Stats()
	if err != nil {
		appError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, st)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	summary := s.svc.Metrics().GetSummary()
	summary["sse_clients"] = s.broker.ClientCount()
	summary["sse_dropped"] = s.broker.Dropped()
	jsonResponse(w, http.StatusOK, summary)
}

// --- SSE ---

func (s *Server) handleSSEEvents(w http.ResponseWriter, r *http.Request) {
	s.serveSSE(w, r, 0)
}

func (s *Server) handleSSEEventsFiltered(w http.ResponseWriter, r *http.Request) {
	memoID, err := pathID(r, "memoID")
	if err != nil {
		appError(w, err)
		return
	}
	s.serveSSE(w, r, memoID)
}

func (s *Server) serveSSE(w http.ResponseWriter, r *http.Request, memoID int64) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	clientID := uuid.New().String()
	client := s.broker.Subscribe(r.Context(), clientID, memoID)

	// Send initial connected event.
	data, _ := json.Marshal(map[string]string{"type": "connected", "client_id": clientID})
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()

	for ev := range client.Events {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, data)
		flusher.Flush()
	}
}
