// Package contract holds the types and interfaces shared between the
// assistant loop, the tool gateway, and the session layer.
package contract

import (
	"github.com/cloudwego/eino/schema"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallRef records one tool invocation the model asked for, with the raw
// JSON argument payload.
type ToolCallRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of a conversation transcript. It is the persistable
// mirror of an eino schema.Message.
type Message struct {
	Role       Role          `json:"role"`
	Content    string        `json:"content"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCallRef `json:"tool_calls,omitempty"`
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

func (m Message) ToSchema() *schema.Message {
	out := &schema.Message{
		Role:       roleToSchema(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
			ID: tc.ID,
			Function: schema.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return out
}

func FromSchema(msg *schema.Message) Message {
	out := Message{
		Role:       roleFromSchema(msg.Role),
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCallRef{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}

func roleToSchema(r Role) schema.RoleType {
	switch r {
	case RoleSystem:
		return schema.System
	case RoleAssistant:
		return schema.Assistant
	case RoleTool:
		return schema.Tool
	default:
		return schema.User
	}
}

func roleFromSchema(r schema.RoleType) Role {
	switch r {
	case schema.System:
		return RoleSystem
	case schema.Assistant:
		return RoleAssistant
	case schema.Tool:
		return RoleTool
	default:
		return RoleUser
	}
}

// ToolRequest is one operation the model asked the engine to run, with
// arguments already decoded.
type ToolRequest struct {
	ID   string         `json:"id"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries one operation's outcome back into Reasoning. Failures
// are values here: a failed tool sets Error and the model explains it to
// the user.
type ToolResult struct {
	ID     string `json:"id"`
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TurnInput is one user utterance plus the transcript so far. OnDelta,
// when set, receives content fragments of the terminal reply as the model
// streams them.
type TurnInput struct {
	SessionID string
	History   []Message
	Text      string
	OnDelta   func(string)
}

// TurnOutput is the terminal reply plus every message appended during the
// turn (the user message, assistant tool-call rounds, tool results, and
// the final reply), in order. The caller owns persisting them.
type TurnOutput struct {
	Reply    string
	Messages []Message
}
