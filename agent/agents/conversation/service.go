package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	extractx "github.com/Chispasgg/personal-ai-agent-api/agent/extract"
	extractionx "github.com/Chispasgg/personal-ai-agent-api/agent/extraction"
	llmx "github.com/Chispasgg/personal-ai-agent-api/agent/llm"
	memoryx "github.com/Chispasgg/personal-ai-agent-api/agent/memory"
	nodex "github.com/Chispasgg/personal-ai-agent-api/agent/nodes/conversation"
	statex "github.com/Chispasgg/personal-ai-agent-api/agent/state"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidSession = nodex.ErrInvalidSession
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrMessageTooLong = nodex.ErrMessageTooLong
)

type Config struct {
	MaxMessageLength int    `split_words:"true" default:"2000"`
	DefaultLanguage  string `split_words:"true" default:"es"`
	RAGTopK          int    `envconfig:"RAG_TOP_K" default:"3"`
}

// Service runs one conversation turn end to end through a compiled
// graph. All collaborators are injected; the service owns only the
// per-session locking and the cumulative extraction cache.
type Service struct {
	sessions    *statex.Service
	memory      *memoryx.Manager
	chains      *llmx.ChainManager
	extractor   *extractionx.Service
	retriever   contractx.Retriever
	analyzer    contractx.SentimentAnalyzer
	translator  contractx.Translator
	synthesizer contractx.Synthesizer

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	dataMu sync.Mutex
	data   map[string]extractx.ExtractedData

	cfg Config
	now func() time.Time
}

func New(
	sessions *statex.Service,
	memory *memoryx.Manager,
	chains *llmx.ChainManager,
	extractor *extractionx.Service,
	retriever contractx.Retriever,
	analyzer contractx.SentimentAnalyzer,
	translator contractx.Translator,
	synthesizer contractx.Synthesizer,
	cfg Config,
) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("session service is required")
	}
	if memory == nil {
		return nil, errors.New("memory manager is required")
	}
	if chains == nil {
		return nil, errors.New("chain manager is required")
	}
	if extractor == nil {
		return nil, errors.New("extraction service is required")
	}
	if analyzer == nil {
		return nil, errors.New("sentiment analyzer is required")
	}

	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 2000
	}
	if strings.TrimSpace(cfg.DefaultLanguage) == "" {
		cfg.DefaultLanguage = "es"
	}
	if cfg.RAGTopK <= 0 {
		cfg.RAGTopK = 3
	}

	s := &Service{
		sessions:    sessions,
		memory:      memory,
		chains:      chains,
		extractor:   extractor,
		retriever:   retriever,
		analyzer:    analyzer,
		translator:  translator,
		synthesizer: synthesizer,
		locks:       make(map[string]*sync.Mutex),
		data:        make(map[string]extractx.ExtractedData),
		cfg:         cfg,
		now:         time.Now,
	}

	graphRunner, err := s.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// HandleMessage processes one turn. The whole graph invocation runs
// under the session's lock, so turns for one session are strictly
// serialized while different sessions proceed in parallel.
func (s *Service) HandleMessage(ctx context.Context, req contractx.ChatRequest) (contractx.ChatResponse, error) {
	sessionID := strings.TrimSpace(req.SessionID)

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	hint := ""
	if req.Language != nil {
		hint = strings.TrimSpace(*req.Language)
	}

	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID:     req.SessionID,
		Text:          req.Message,
		LanguageHint:  hint,
		AudioResponse: req.AudioResponse,
	})
	if err != nil {
		return contractx.ChatResponse{}, err
	}
	return out.Response, nil
}

// ResetSession drops the volatile history and the cumulative field
// cache. The durable session record is untouched.
func (s *Service) ResetSession(sessionID string) {
	sessionID = strings.TrimSpace(sessionID)

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s.memory.Reset(sessionID)

	s.dataMu.Lock()
	delete(s.data, sessionID)
	s.dataMu.Unlock()

	log.Info().Str("session_id", sessionID).Msg("session reset")
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// currentExtracted returns the session's merged snapshot, rebuilding it
// from the durable record when the cache is cold.
func (s *Service) currentExtracted(ctx context.Context, sessionID string) extractx.ExtractedData {
	s.dataMu.Lock()
	cached, ok := s.data[sessionID]
	s.dataMu.Unlock()
	if ok {
		return cached
	}

	session, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, statex.ErrSessionNotFound) {
			log.Warn().Str("session_id", sessionID).Err(err).Msg("extraction cache rehydration failed")
		}
		return extractx.ExtractedData{}
	}

	rebuilt := session.CumulativeExtracted()
	s.setExtracted(sessionID, rebuilt)
	log.Info().Str("session_id", sessionID).Msg("extraction cache rehydrated from storage")
	return rebuilt
}

func (s *Service) setExtracted(sessionID string, data extractx.ExtractedData) {
	s.dataMu.Lock()
	s.data[sessionID] = data
	s.dataMu.Unlock()
}
