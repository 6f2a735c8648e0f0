package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/contract"
)

// turnState carries one turn through the graph: the model-facing message
// history and the transcript entries produced so far.
type turnState struct {
	sessionID string
	history   []*schema.Message
	appended  []contractx.Message
	reply     string
	onDelta   func(string)
	startedAt time.Time
}

func (a *Assistant) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[contractx.TurnInput, contractx.TurnOutput], error) {
	graph := compose.NewGraph[contractx.TurnInput, contractx.TurnOutput]()

	if err := graph.AddLambdaNode("validate_turn",
		compose.InvokableLambda(func(ctx context.Context, in contractx.TurnInput) (*turnState, error) {
			return validateTurn(in, a.systemPrompt, a.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_turn: %w", err)
	}

	if err := graph.AddLambdaNode("converse",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			return a.converse(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node converse: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (contractx.TurnOutput, error) {
			return finalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_turn"},
		{"validate_turn", "converse"},
		{"converse", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("assistant.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile assistant graph: %w", err)
	}
	return runner, nil
}
