package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	conversationx "github.com/Chispasgg/personal-ai-agent-api/agent/agents/conversation"
	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	ragx "github.com/Chispasgg/personal-ai-agent-api/agent/rag"
	statex "github.com/Chispasgg/personal-ai-agent-api/agent/state"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Addr        string        `split_words:"true" default:":8000"`
	APIKeyAdmin string        `envconfig:"API_KEY_ADMIN" split_words:"true"`
	Version     string        `split_words:"true" default:"1.0.0"`
	IngestTime  time.Duration `split_words:"true" default:"10m"`
}

type ingestRequest struct {
	KBPath string `json:"kb_path"`
}

type ingestJob struct {
	ID         string     `json:"job_id"`
	Status     string     `json:"status"`
	Chunks     int        `json:"chunks,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Server exposes the chat, admin, and health endpoints over a plain
// net/http mux.
type Server struct {
	conversation *conversationx.Service
	sessions     *statex.Service
	ingestor     *ragx.Ingestor
	retriever    *ragx.Retriever
	cfg          Config

	jobsMu sync.Mutex
	jobs   map[string]*ingestJob

	mux *http.ServeMux
}

func New(
	conversation *conversationx.Service,
	sessions *statex.Service,
	ingestor *ragx.Ingestor,
	retriever *ragx.Retriever,
	cfg Config,
) (*Server, error) {
	if conversation == nil {
		return nil, errors.New("conversation service is required")
	}
	if sessions == nil {
		return nil, errors.New("session service is required")
	}

	s := &Server{
		conversation: conversation,
		sessions:     sessions,
		ingestor:     ingestor,
		retriever:    retriever,
		cfg:          cfg,
		jobs:         make(map[string]*ingestJob),
		mux:          http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/v1/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/v1/admin/ingest", s.handleIngest)
	s.mux.HandleFunc("GET /api/v1/admin/ingest/{id}", s.handleIngestStatus)
	s.mux.HandleFunc("GET /api/v1/admin/session/{id}", s.handleSession)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	return s, nil
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req contractx.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.conversation.HandleMessage(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, conversationx.ErrInvalidSession),
			errors.Is(err, conversationx.ErrInvalidMessage),
			errors.Is(err, conversationx.ErrMessageTooLong),
			errors.Is(err, contractx.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, contractx.ErrModelInvoke):
			log.Error().Err(err).Str("session_id", req.SessionID).Msg("reply generation failed")
			writeError(w, http.StatusBadGateway, "reply generation failed")
		default:
			log.Error().Err(err).Str("session_id", req.SessionID).Msg("chat turn failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "invalid API key")
		return
	}
	if s.ingestor == nil {
		writeError(w, http.StatusServiceUnavailable, "ingestion is not configured")
		return
	}

	// The body is optional; when present it may override the corpus path.
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job := &ingestJob{
		ID:        uuid.NewString(),
		Status:    "running",
		StartedAt: time.Now().UTC(),
	}
	s.jobsMu.Lock()
	s.jobs[job.ID] = job
	s.jobsMu.Unlock()

	go s.runIngest(job, req.KBPath)

	writeJSON(w, http.StatusAccepted, job)
}

// runIngest executes the ingestion pipeline detached from the request,
// with its own deadline.
func (s *Server) runIngest(job *ingestJob, kbPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.IngestTime)
	defer cancel()

	log.Info().Str("job_id", job.ID).Str("kb_path", kbPath).Msg("knowledge base ingestion started")
	chunks, err := s.ingestor.Ingest(ctx, kbPath)

	now := time.Now().UTC()
	s.jobsMu.Lock()
	job.FinishedAt = &now
	if err != nil {
		job.Status = "failed"
		job.Error = err.Error()
	} else {
		job.Status = "completed"
		job.Chunks = chunks
	}
	s.jobsMu.Unlock()

	if err != nil {
		log.Error().Str("job_id", job.ID).Err(err).Msg("knowledge base ingestion failed")
		return
	}
	if s.retriever != nil {
		s.retriever.Invalidate()
	}
	log.Info().Str("job_id", job.ID).Int("chunks", chunks).Msg("knowledge base ingestion completed")
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "invalid API key")
		return
	}

	s.jobsMu.Lock()
	job, ok := s.jobs[r.PathValue("id")]
	var snapshot ingestJob
	if ok {
		snapshot = *job
	}
	s.jobsMu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "invalid API key")
		return
	}

	session, err := s.sessions.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, statex.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, statex.ErrInvalidSession):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Msg("session fetch failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.cfg.Version,
	})
}

// authorized checks the shared admin secret. An empty configured key
// disables the admin surface entirely.
func (s *Server) authorized(r *http.Request) bool {
	key := strings.TrimSpace(s.cfg.APIKeyAdmin)
	if key == "" {
		return false
	}
	return r.Header.Get("X-API-Key") == key
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
