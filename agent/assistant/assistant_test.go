package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/contract"
)

// scriptedModel replays a fixed sequence of rounds. Each round is either a
// single message (Generate) or a chunk list (Stream).
type scriptedModel struct {
	rounds [][]*schema.Message
	err    error

	calls      int
	boundTools []*schema.ToolInfo
	inputs     [][]*schema.Message
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	m.boundTools = tools
	return m, nil
}

func (m *scriptedModel) next(input []*schema.Message) ([]*schema.Message, error) {
	m.inputs = append(m.inputs, append([]*schema.Message(nil), input...))
	if m.err != nil {
		return nil, m.err
	}
	if m.calls >= len(m.rounds) {
		return nil, errors.New("no scripted round left")
	}
	round := m.rounds[m.calls]
	m.calls++
	return round, nil
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	round, err := m.next(input)
	if err != nil {
		return nil, err
	}
	if len(round) == 1 {
		return round[0], nil
	}
	return schema.ConcatMessages(round)
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	round, err := m.next(input)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray(round), nil
}

type fakeGateway struct {
	results map[string]contractx.ToolResult
	err     error
	calls   [][]contractx.ToolRequest
}

func (f *fakeGateway) Execute(ctx context.Context, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	f.calls = append(f.calls, append([]contractx.ToolRequest(nil), reqs...))
	if f.err != nil {
		return nil, f.err
	}
	out := make([]contractx.ToolResult, len(reqs))
	for i, req := range reqs {
		res, ok := f.results[req.Tool]
		if !ok {
			res = contractx.ToolResult{Result: "ok"}
		}
		res.ID = req.ID
		res.Tool = req.Tool
		out[i] = res
	}
	return out, nil
}

func assistantMessage(content string, calls ...schema.ToolCall) *schema.Message {
	return &schema.Message{
		Role:      schema.Assistant,
		Content:   content,
		ToolCalls: calls,
	}
}

func newTestAssistant(t *testing.T, model *scriptedModel, tools contractx.ToolGateway) *Assistant {
	t.Helper()
	a, err := New(model, tools)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestHandleTurnInvalidInput(t *testing.T) {
	t.Parallel()

	a := newTestAssistant(t, &scriptedModel{}, &fakeGateway{})

	_, err := a.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "  ", Text: "hi"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	_, err = a.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "s1", Text: "   "})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestHandleTurnPlainReply(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{
		rounds: [][]*schema.Message{
			{assistantMessage("Hi! Want to book an appointment?")},
		},
	}
	a := newTestAssistant(t, model, &fakeGateway{})

	out, err := a.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "s1", Text: "hello"})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if out.Reply != "Hi! Want to book an appointment?" {
		t.Fatalf("Reply = %q", out.Reply)
	}
	if len(out.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want user + assistant", len(out.Messages))
	}
	if out.Messages[0].Role != contractx.RoleUser || out.Messages[1].Role != contractx.RoleAssistant {
		t.Fatalf("message roles = %v, %v", out.Messages[0].Role, out.Messages[1].Role)
	}

	if len(model.boundTools) == 0 {
		t.Fatal("tool infos were not bound to the model")
	}
	// The model sees the system prompt first, then the user turn.
	if model.inputs[0][0].Role != schema.System {
		t.Fatalf("first model message role = %v, want system", model.inputs[0][0].Role)
	}
}

func TestHandleTurnToolRoundTrip(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{
		rounds: [][]*schema.Message{
			{assistantMessage("", schema.ToolCall{
				ID:       "c1",
				Function: schema.FunctionCall{Name: "search_barbers", Arguments: `{"specialty":"fade"}`},
			})},
			{assistantMessage("John Smith does fades.")},
		},
	}
	gateway := &fakeGateway{
		results: map[string]contractx.ToolResult{
			"search_barbers": {Result: []string{"John Smith"}},
		},
	}
	a := newTestAssistant(t, model, gateway)

	out, err := a.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "s1", Text: "who does fades?"})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if out.Reply != "John Smith does fades." {
		t.Fatalf("Reply = %q", out.Reply)
	}

	if len(gateway.calls) != 1 {
		t.Fatalf("gateway calls = %d, want 1", len(gateway.calls))
	}
	req := gateway.calls[0][0]
	if req.ID != "c1" || req.Tool != "search_barbers" {
		t.Fatalf("request = %+v", req)
	}
	if req.Args["specialty"] != "fade" {
		t.Fatalf("Args = %v, want decoded specialty", req.Args)
	}

	// user, assistant tool call, tool result, final assistant reply.
	if len(out.Messages) != 4 {
		t.Fatalf("len(Messages) = %d, want 4", len(out.Messages))
	}
	toolMsg := out.Messages[2]
	if toolMsg.Role != contractx.RoleTool || toolMsg.ToolCallID != "c1" {
		t.Fatalf("tool message = %+v", toolMsg)
	}
	if !strings.Contains(toolMsg.Content, "John Smith") {
		t.Fatalf("tool message content = %q, want serialized result", toolMsg.Content)
	}

	// The second model round must include the tool result.
	second := model.inputs[1]
	last := second[len(second)-1]
	if last.Role != schema.Tool || last.ToolCallID != "c1" {
		t.Fatalf("second round last message = %+v, want tool result", last)
	}
}

func TestHandleTurnToolErrorBecomesPayload(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{
		rounds: [][]*schema.Message{
			{assistantMessage("", schema.ToolCall{
				ID:       "c1",
				Function: schema.FunctionCall{Name: "book_appointment", Arguments: `{}`},
			})},
			{assistantMessage("That didn't work, sorry.")},
		},
	}
	gateway := &fakeGateway{
		results: map[string]contractx.ToolResult{
			"book_appointment": {Error: "Invalid date format"},
		},
	}
	a := newTestAssistant(t, model, gateway)

	out, err := a.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "s1", Text: "book it"})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	toolMsg := out.Messages[2]
	if !strings.Contains(toolMsg.Content, `"error"`) || !strings.Contains(toolMsg.Content, "Invalid date format") {
		t.Fatalf("tool message content = %q, want error payload", toolMsg.Content)
	}
}

func TestHandleTurnEmptyReplyFallsBack(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{
		rounds: [][]*schema.Message{
			{assistantMessage("   ")},
		},
	}
	a := newTestAssistant(t, model, &fakeGateway{})

	out, err := a.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "s1", Text: "hello"})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if out.Reply != fallbackReply {
		t.Fatalf("Reply = %q, want fallback", out.Reply)
	}
	last := out.Messages[len(out.Messages)-1]
	if last.Content != fallbackReply {
		t.Fatalf("persisted terminal message = %q, want fallback", last.Content)
	}
}

func TestHandleTurnBadToolArgs(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{
		rounds: [][]*schema.Message{
			{assistantMessage("", schema.ToolCall{
				ID:       "c1",
				Function: schema.FunctionCall{Name: "search_barbers", Arguments: `{not json`},
			})},
		},
	}
	a := newTestAssistant(t, model, &fakeGateway{})

	_, err := a.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "s1", Text: "hi"})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("error = %v, want ErrSchemaViolation", err)
	}
}

func TestHandleTurnModelErrorWrapped(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{err: errors.New("upstream 503")}
	a := newTestAssistant(t, model, &fakeGateway{})

	_, err := a.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "s1", Text: "hi"})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("error = %v, want ErrModelInvoke", err)
	}
}

func TestHandleTurnGatewayErrorPropagates(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{
		rounds: [][]*schema.Message{
			{assistantMessage("", schema.ToolCall{
				ID:       "c1",
				Function: schema.FunctionCall{Name: "search_barbers", Arguments: `{}`},
			})},
		},
	}
	a := newTestAssistant(t, model, &fakeGateway{err: errors.New("gateway down")})

	_, err := a.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "s1", Text: "hi"})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("error = %v, want ErrModelInvoke", err)
	}
}

func TestHandleTurnStreamsDeltas(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{
		rounds: [][]*schema.Message{
			{
				assistantMessage("Our barbers are "),
				assistantMessage("John and Sarah."),
			},
		},
	}
	a := newTestAssistant(t, model, &fakeGateway{})

	var deltas []string
	out, err := a.HandleTurn(context.Background(), contractx.TurnInput{
		SessionID: "s1",
		Text:      "who works here?",
		OnDelta:   func(d string) { deltas = append(deltas, d) },
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if out.Reply != "Our barbers are John and Sarah." {
		t.Fatalf("Reply = %q", out.Reply)
	}
	if strings.Join(deltas, "") != "Our barbers are John and Sarah." {
		t.Fatalf("deltas = %q, want the full reply in order", deltas)
	}
}

func TestHandleTurnStreamHidesToolCallRounds(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{
		rounds: [][]*schema.Message{
			{assistantMessage("", schema.ToolCall{
				ID:       "c1",
				Function: schema.FunctionCall{Name: "search_barbers", Arguments: `{}`},
			})},
			{assistantMessage("Done.")},
		},
	}
	a := newTestAssistant(t, model, &fakeGateway{})

	var deltas []string
	out, err := a.HandleTurn(context.Background(), contractx.TurnInput{
		SessionID: "s1",
		Text:      "hi",
		OnDelta:   func(d string) { deltas = append(deltas, d) },
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if out.Reply != "Done." {
		t.Fatalf("Reply = %q", out.Reply)
	}
	if strings.Join(deltas, "") != "Done." {
		t.Fatalf("deltas = %q, tool-call chunks must not leak", deltas)
	}
}
