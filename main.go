package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	conversationx "github.com/Chispasgg/personal-ai-agent-api/agent/agents/conversation"
	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	extractionx "github.com/Chispasgg/personal-ai-agent-api/agent/extraction"
	llmx "github.com/Chispasgg/personal-ai-agent-api/agent/llm"
	memoryx "github.com/Chispasgg/personal-ai-agent-api/agent/memory"
	ragx "github.com/Chispasgg/personal-ai-agent-api/agent/rag"
	sentimentx "github.com/Chispasgg/personal-ai-agent-api/agent/sentiment"
	statex "github.com/Chispasgg/personal-ai-agent-api/agent/state"
	configx "github.com/Chispasgg/personal-ai-agent-api/pkg/config"
	_ "github.com/Chispasgg/personal-ai-agent-api/pkg/logger/autoload"
	translatex "github.com/Chispasgg/personal-ai-agent-api/pkg/translate"
	ttsx "github.com/Chispasgg/personal-ai-agent-api/pkg/tts"
	serverx "github.com/Chispasgg/personal-ai-agent-api/server"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := statex.NewStore(*configx.MustNew[statex.Config]("STORAGE"))
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}
	if bunStore, ok := store.(*statex.BunStore); ok {
		if err := bunStore.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("postgres schema init failed")
		}
		defer bunStore.Close()
	}

	sessions, err := statex.NewService(store)
	if err != nil {
		log.Fatal().Err(err).Msg("session service init failed")
	}

	mem, err := memoryx.NewManager(store, *configx.MustNew[memoryx.Config]("MEMORY"))
	if err != nil {
		log.Fatal().Err(err).Msg("memory init failed")
	}

	chatModel, err := llmx.NewChatModel(ctx, *configx.MustNew[llmx.Config]("LLM"))
	if err != nil {
		log.Fatal().Err(err).Msg("chat model init failed")
	}
	chains, err := llmx.NewChainManager(ctx, chatModel)
	if err != nil {
		log.Fatal().Err(err).Msg("chain compilation failed")
	}

	extractor := extractionx.NewService(chains, *configx.MustNew[extractionx.Config]("EXTRACTION"))
	analyzer := sentimentx.NewAnalyzer(*configx.MustNew[sentimentx.Config]("SENTIMENT"))
	translator := translatex.MustNew(*configx.MustNew[translatex.Config]("TRANSLATE"))
	synthesizer := ttsx.NewSynthesizer(*configx.MustNew[ttsx.Config]("TTS"))

	// RAG is optional: without an embedding key the agent runs with an
	// empty knowledge base.
	var (
		retriever    contractx.Retriever
		ragRetriever *ragx.Retriever
		ingestor     *ragx.Ingestor
	)
	ingestCfg := configx.MustNew[ragx.IngestConfig]("RAG")
	embedder, err := ragx.NewOpenAIEmbedder(*configx.MustNew[ragx.EmbedderConfig]("EMBEDDING"))
	if err != nil {
		log.Warn().Err(err).Msg("embeddings unavailable, knowledge base disabled")
	} else {
		indexStore := ragx.NewIndexStore(ingestCfg.VectorStoreDir)
		ragRetriever = ragx.NewRetriever(embedder, indexStore, *configx.MustNew[ragx.RetrieverConfig]("RAG"))
		retriever = ragRetriever
		ingestor = ragx.NewIngestor(embedder, indexStore, *ingestCfg)
	}

	conversation, err := conversationx.New(
		sessions,
		mem,
		chains,
		extractor,
		retriever,
		analyzer,
		translator,
		synthesizer,
		*configx.MustNew[conversationx.Config]("CONVERSATION"),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("conversation service init failed")
	}

	serverCfg := configx.MustNew[serverx.Config]("SERVER")
	srv, err := serverx.New(conversation, sessions, ingestor, ragRetriever, *serverCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("server init failed")
	}

	httpServer := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("addr", serverCfg.Addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("shutdown complete")
}
