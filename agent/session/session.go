// Package session holds the per-conversation transcript and its
// persistence. A State is the durable record of one chat: identity plus
// the ordered message history the assistant replays on every turn.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/contract"
)

var (
	ErrNilState       = errors.New("session state is nil")
	ErrInvalidSession = errors.New("session id is empty")
)

// DefaultHistoryLimit bounds how many transcript messages survive a trim.
// Old turns fall off the front; tool-call rounds are kept whole so the
// model never sees a tool result without the call that produced it.
const DefaultHistoryLimit = 40

// State is the persistent record of one conversation.
type State struct {
	SessionID  string             `json:"session_id"`
	CustomerID string             `json:"customer_id,omitempty"`
	Messages   []contract.Message `json:"messages,omitempty"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func NewState(sessionID, customerID string, now time.Time) *State {
	return &State{
		SessionID:  sessionID,
		CustomerID: customerID,
		UpdatedAt:  now.UTC(),
	}
}

func (s *State) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Append adds messages to the transcript without mutating the existing
// backing array, so callers holding an older snapshot stay consistent.
func (s *State) Append(msgs ...contract.Message) {
	if s == nil || len(msgs) == 0 {
		return
	}
	next := make([]contract.Message, 0, len(s.Messages)+len(msgs))
	next = append(next, s.Messages...)
	next = append(next, msgs...)
	s.Messages = next
}

// Trim drops the oldest messages until at most limit remain. The cut is
// moved forward past any tool messages so a tool result never becomes the
// first entry, which would orphan it from its assistant tool call.
func (s *State) Trim(limit int) {
	if s == nil || limit <= 0 || len(s.Messages) <= limit {
		return
	}
	cut := len(s.Messages) - limit
	for cut < len(s.Messages) && s.Messages[cut].Role == contract.RoleTool {
		cut++
	}
	s.Messages = s.Messages[cut:]
}

func (s *State) Validate() error {
	if s == nil {
		return ErrNilState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	for i, m := range s.Messages {
		switch m.Role {
		case contract.RoleSystem, contract.RoleUser, contract.RoleAssistant, contract.RoleTool:
		default:
			return fmt.Errorf("message %d has unknown role %q", i, m.Role)
		}
	}
	return nil
}
