package conversation

import (
	"context"
	"fmt"

	nodex "github.com/Chispasgg/personal-ai-agent-api/agent/nodes/conversation"
	"github.com/cloudwego/eino/compose"
)

func (s *Service) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, s.cfg.MaxMessageLength, s.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("detect_language",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DetectLanguage(ctx, in, s.translator, s.cfg.DefaultLanguage)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node detect_language: %w", err)
	}

	if err := graph.AddLambdaNode("analyze_sentiment",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AnalyzeSentiment(in, s.analyzer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node analyze_sentiment: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_memory",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ResolveMemory(ctx, in, s.memory)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_memory: %w", err)
	}

	if err := graph.AddLambdaNode("extract_fields",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			current := s.currentExtracted(ctx, in.SessionID)
			return nodex.ExtractFields(ctx, in, s.extractor, current)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_fields: %w", err)
	}

	if err := graph.AddLambdaNode("retrieve_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RetrieveContext(ctx, in, s.retriever, s.cfg.RAGTopK)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node retrieve_context: %w", err)
	}

	if err := graph.AddLambdaNode("generate_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.GenerateReply(ctx, in, s.chains)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_reply: %w", err)
	}

	if err := graph.AddLambdaNode("record_turn",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			state, err := nodex.RecordTurn(ctx, in, s.memory, s.sessions)
			if err != nil {
				return nil, err
			}
			s.setExtracted(state.SessionID, state.Result.Extracted)
			return state, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_turn: %w", err)
	}

	if err := graph.AddLambdaNode("maybe_finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.MaybeFinalize(ctx, in, s.sessions, s.memory, s.chains)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node maybe_finalize: %w", err)
	}

	if err := graph.AddLambdaNode("synthesize_speech",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SynthesizeSpeech(ctx, in, s.synthesizer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node synthesize_speech: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_response",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeResponse(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_response: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "detect_language"},
		{"detect_language", "analyze_sentiment"},
		{"analyze_sentiment", "resolve_memory"},
		{"resolve_memory", "extract_fields"},
		{"extract_fields", "retrieve_context"},
		{"retrieve_context", "generate_reply"},
		{"generate_reply", "record_turn"},
		{"record_turn", "maybe_finalize"},
		{"maybe_finalize", "synthesize_speech"},
		{"synthesize_speech", "finalize_response"},
		{"finalize_response", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("conversation.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile conversation graph: %w", err)
	}
	return runner, nil
}
