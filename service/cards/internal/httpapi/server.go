package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CardTable/service/cards/internal/cards"
	"CardTable/service/cards/internal/game"
	"github.com/google/uuid"
)

// Limite sul body delle request: i descriptor sono piccoli.
const maxBodyBytes = 64 << 10

// RequestIDHeader propaga il request id verso il client.
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// Server espone le operazioni di game.Manager come endpoint REST.
// Qui si leggono path/body e si mappano gli errori di dominio in status HTTP.
type Server struct {
	logger *slog.Logger
	games  game.Manager
}

// NewServer collega logger e dominio.
func NewServer(logger *slog.Logger, games game.Manager) *Server {
	return &Server{logger: logger, games: games}
}

// Handler ritorna il mux con tutte le route e il middleware di logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /games", s.createGame)
	mux.HandleFunc("GET /games/{id}", s.getGame)
	mux.HandleFunc("GET /games/{id}/deck", s.getDeck)
	mux.HandleFunc("GET /games/{id}/piles/{name}", s.getPile)
	mux.HandleFunc("POST /games/{id}/piles/{name}", s.createPile)
	mux.HandleFunc("PUT /games/{id}/piles/{name}", s.drawIntoPile)
	mux.HandleFunc("POST /games/{id}/draw", s.draw)
	mux.HandleFunc("GET /cards", s.previewCards)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	return s.withRequestLog(mux)
}

// drawRequest e' il body di POST /games/{id}/draw e PUT /games/{id}/piles/{name}.
type drawRequest struct {
	Source      string           `json:"source"`
	Destination string           `json:"destination"`
	Selection   cards.Descriptor `json:"selection"`
}

type drawResponse struct {
	game.View
	Moved []cards.Card `json:"moved"`
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.CreateGame(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g.View())
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

func (s *Server) getDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.games.GetDeck(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*cards.Collection{game.DeckName: deck})
}

func (s *Server) getPile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	pile, err := s.games.GetPile(r.Context(), r.PathValue("id"), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*cards.Collection{name: pile})
}

func (s *Server) createPile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	g, err := s.games.CreatePile(r.Context(), r.PathValue("id"), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g.View())
}

// drawIntoPile usa il nome nel path come destinazione.
func (s *Server) drawIntoPile(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeDraw(w, r)
	if !ok {
		return
	}
	req.Destination = r.PathValue("name")
	s.doDraw(w, r, req)
}

func (s *Server) draw(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeDraw(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Destination) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "destination is required"})
		return
	}
	s.doDraw(w, r, req)
}

func (s *Server) doDraw(w http.ResponseWriter, r *http.Request, req drawRequest) {
	sel, err := req.Selection.Selection()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g, moved, err := s.games.Draw(r.Context(), r.PathValue("id"),
		game.ParseRef(req.Source), game.ParseRef(req.Destination), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if moved == nil {
		moved = []cards.Card{}
	}
	writeJSON(w, http.StatusOK, drawResponse{View: g.View(), Moved: moved})
}

func (s *Server) decodeDraw(w http.ResponseWriter, r *http.Request) (drawRequest, bool) {
	var req drawRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return drawRequest{}, false
	}
	return req, true
}

// previewCards risolve la selezione su un mazzo completo, senza partita.
func (s *Server) previewCards(w http.ResponseWriter, r *http.Request) {
	desc, err := descriptorFromQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	sel, err := desc.Selection()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	selected := cards.FromAll(sel, nil)
	if selected == nil {
		selected = []cards.Card{}
	}
	writeJSON(w, http.StatusOK, map[string][]cards.Card{"cards": selected})
}

// descriptorFromQuery legge top/bottom/random come interi e suits/values/cards come liste separate da virgole.
func descriptorFromQuery(q url.Values) (cards.Descriptor, error) {
	var desc cards.Descriptor
	counts := []struct {
		key string
		dst **int
	}{
		{"top", &desc.Top},
		{"bottom", &desc.Bottom},
		{"random", &desc.Random},
	}
	for _, c := range counts {
		if !q.Has(c.key) {
			continue
		}
		n, err := strconv.Atoi(q.Get(c.key))
		if err != nil || n < 0 {
			return cards.Descriptor{}, fmt.Errorf("%s must be a non-negative integer", c.key)
		}
		*c.dst = &n
	}
	if q.Has("suits") {
		desc.Suits = splitCodes(q.Get("suits"))
	}
	if q.Has("values") {
		desc.Values = splitCodes(q.Get("values"))
	}
	if q.Has("cards") {
		desc.Cards = splitCodes(q.Get("cards"))
	}
	return desc, nil
}

func splitCodes(raw string) []string {
	codes := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			codes = append(codes, part)
		}
	}
	return codes
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError mappa gli errori di dominio nello status HTTP.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, game.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, game.ErrAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, game.ErrGameBusy), errors.Is(err, game.ErrVersionConflict):
		status, message = http.StatusConflict, "game is being modified, retry"
	case errors.Is(err, cards.ErrNotEnoughCards):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, cards.ErrInvalidCode), errors.Is(err, game.ErrInvalidPileName):
		status, message = http.StatusBadRequest, err.Error()
	default:
		s.logger.Error("errore interno", "error", err, "path", r.URL.Path, "request_id", requestID(r.Context()))
	}
	writeJSON(w, status, errorBody{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder memorizza lo status scritto dall'handler per il log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.logger.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rec.status,
			"duration", time.Since(start), "request_id", id)
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
