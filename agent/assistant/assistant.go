// Package assistant runs the conversation loop: it hands the transcript
// to the chat model, executes whatever tools the model asks for, feeds the
// results back, and repeats until the model answers in plain text.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/contract"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/prompt"
	toolx "github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/tool"
)

var (
	ErrInvalidMessage = errors.New("message text is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

// fallbackReply is used when the model terminates a turn with no content
// at all. The loop always hands the user something.
const fallbackReply = "I'm sorry, I wasn't able to put together a response just now. Could you rephrase that?"

type Assistant struct {
	model einomodel.ToolCallingChatModel
	tools contractx.ToolGateway

	graphRunner compose.Runnable[contractx.TurnInput, contractx.TurnOutput]

	systemPrompt string

	now func() time.Time
}

func New(chatModel einomodel.ToolCallingChatModel, tools contractx.ToolGateway) (*Assistant, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}

	boundModel, err := chatModel.WithTools(toolx.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}

	a := &Assistant{
		model:        boundModel,
		tools:        tools,
		systemPrompt: prompt.System(),
		now:          time.Now,
	}

	graphRunner, err := a.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// HandleTurn runs one user utterance through the loop and returns the
// terminal reply plus every transcript message the turn produced.
func (a *Assistant) HandleTurn(ctx context.Context, in contractx.TurnInput) (contractx.TurnOutput, error) {
	return a.graphRunner.Invoke(ctx, in)
}

func validateTurn(in contractx.TurnInput, systemPrompt string, now func() time.Time) (*turnState, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, ErrInvalidSession)
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, ErrInvalidMessage)
	}

	st := &turnState{
		sessionID: in.SessionID,
		onDelta:   in.OnDelta,
		startedAt: now(),
	}

	st.history = append(st.history, schema.SystemMessage(systemPrompt))
	for _, m := range in.History {
		st.history = append(st.history, m.ToSchema())
	}

	userMsg := contractx.UserMessage(text)
	st.history = append(st.history, userMsg.ToSchema())
	st.appended = append(st.appended, userMsg)

	return st, nil
}

// converse is the tool loop. Each round asks the model for the next
// message; tool calls are executed through the gateway and their results
// appended as tool messages before the next round. A round with no tool
// calls ends the turn. The caller's context deadline bounds the loop.
func (a *Assistant) converse(ctx context.Context, st *turnState) (*turnState, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: conversation aborted: %v", contractx.ErrModelInvoke, err)
		}

		msg, err := a.nextMessage(ctx, st)
		if err != nil {
			return nil, err
		}
		if msg == nil {
			return nil, fmt.Errorf("%w: model returned no message", contractx.ErrSchemaViolation)
		}

		st.history = append(st.history, msg)
		st.appended = append(st.appended, contractx.FromSchema(msg))

		if len(msg.ToolCalls) == 0 {
			st.reply = strings.TrimSpace(msg.Content)
			return st, nil
		}

		requests, err := toToolRequests(msg.ToolCalls)
		if err != nil {
			return nil, err
		}

		results, err := a.tools.Execute(ctx, requests)
		if err != nil {
			return nil, fmt.Errorf("%w: execute tools: %v", contractx.ErrModelInvoke, err)
		}

		for _, res := range results {
			payload, err := marshalToolResult(res)
			if err != nil {
				return nil, err
			}
			toolMsg := schema.ToolMessage(payload, res.ID)
			st.history = append(st.history, toolMsg)
			st.appended = append(st.appended, contractx.FromSchema(toolMsg))
		}

		log.Debug().
			Str("session_id", st.sessionID).
			Int("tool_calls", len(requests)).
			Dur("elapsed", time.Since(st.startedAt)).
			Msg("assistant: tool round complete")
	}
}

// nextMessage invokes the model once. When the caller wants deltas and
// the round produces plain content, fragments are forwarded as they
// arrive; rounds that turn out to be tool calls are concatenated silently.
func (a *Assistant) nextMessage(ctx context.Context, st *turnState) (*schema.Message, error) {
	if st.onDelta == nil {
		msg, err := a.model.Generate(ctx, st.history)
		if err != nil {
			return nil, fmt.Errorf("%w: generate: %v", contractx.ErrModelInvoke, err)
		}
		return msg, nil
	}

	stream, err := a.model.Stream(ctx, st.history)
	if err != nil {
		return nil, fmt.Errorf("%w: stream: %v", contractx.ErrModelInvoke, err)
	}
	defer stream.Close()

	var chunks []*schema.Message
	for {
		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: stream recv: %v", contractx.ErrModelInvoke, err)
		}
		if chunk == nil {
			continue
		}
		chunks = append(chunks, chunk)
		if len(chunk.ToolCalls) == 0 && chunk.Content != "" {
			st.onDelta(chunk.Content)
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: stream produced no chunks", contractx.ErrSchemaViolation)
	}

	msg, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: concat stream chunks: %v", contractx.ErrSchemaViolation, err)
	}
	return msg, nil
}

func finalizeReply(st *turnState) (contractx.TurnOutput, error) {
	if st == nil {
		return contractx.TurnOutput{}, errors.New("nil turn state")
	}

	reply := strings.TrimSpace(st.reply)
	if reply == "" {
		reply = fallbackReply
		apology := contractx.Message{Role: contractx.RoleAssistant, Content: reply}
		// Replace the empty terminal message so the persisted transcript
		// matches what the user actually saw.
		if n := len(st.appended); n > 0 && st.appended[n-1].Role == contractx.RoleAssistant && strings.TrimSpace(st.appended[n-1].Content) == "" && len(st.appended[n-1].ToolCalls) == 0 {
			st.appended[n-1] = apology
		} else {
			st.appended = append(st.appended, apology)
		}
	}

	return contractx.TurnOutput{
		Reply:    reply,
		Messages: st.appended,
	}, nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			ID:   call.ID,
			Tool: name,
			Args: args,
		})
	}
	return reqs, nil
}

// marshalToolResult renders a gateway result as the JSON body of a tool
// message. Failures become {"error": ...} so the model can explain them.
func marshalToolResult(res contractx.ToolResult) (string, error) {
	var payload any = res.Result
	if res.Error != "" {
		payload = map[string]string{"error": res.Error}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal result for tool=%s: %v", contractx.ErrSchemaViolation, res.Tool, err)
	}
	return string(raw), nil
}
