package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/contract"
)

func TestUpstashRedisStoreRedisKey(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{keyPrefix: defaultStoreKeyPrefix}
	got, err := store.redisKey("abc")
	if err != nil {
		t.Fatalf("redisKey() error = %v", err)
	}
	if got != "barberflow:session:abc" {
		t.Fatalf("redisKey() = %q, want %q", got, "barberflow:session:abc")
	}
}

func TestUpstashRedisStoreRedisKeyEmptySession(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{}
	_, err := store.redisKey("   ")
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("redisKey() error = %v, want ErrInvalidSession", err)
	}
}

func TestUpstashRedisStoreSaveCommand(t *testing.T) {
	t.Parallel()

	var gotCommand []any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
		WithTTL(0),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	state := NewState("session-1", "cust", time.Now().UTC())
	state.Append(contract.UserMessage("hello"))
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(gotCommand) != 3 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[0] != "SET" {
		t.Fatalf("command[0] = %v, want SET", gotCommand[0])
	}
	if gotCommand[1] != "barberflow:session:session-1" {
		t.Fatalf("command[1] = %v, want barberflow:session:session-1", gotCommand[1])
	}
}

func TestUpstashRedisStoreSaveAppendsTTL(t *testing.T) {
	t.Parallel()

	var gotCommand []any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
		WithTTL(time.Hour),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if err := store.Save(context.Background(), NewState("session-1", "", time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(gotCommand) != 5 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[3] != "EX" {
		t.Fatalf("command[3] = %v, want EX", gotCommand[3])
	}
	if fmt.Sprint(gotCommand[4]) != "3600" {
		t.Fatalf("command[4] = %v, want 3600", gotCommand[4])
	}
}

func TestUpstashRedisStoreLoadRoundTrip(t *testing.T) {
	t.Parallel()

	seed := NewState("session-2", "cust", time.Now().UTC())
	seed.Append(
		contract.UserMessage("book a haircut"),
		contract.Message{Role: contract.RoleAssistant, Content: "Sure, with whom?"},
	)
	payload, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	encoded, err := json.Marshal(string(payload))
	if err != nil {
		t.Fatalf("marshal encoded seed: %v", err)
	}

	var gotCommand []any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprintf(w, `{"result":%s}`, encoded)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	st, err := store.Load(context.Background(), "session-2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.SessionID != "session-2" {
		t.Fatalf("Load().SessionID = %q, want session-2", st.SessionID)
	}
	if len(st.Messages) != 2 || st.Messages[1].Role != contract.RoleAssistant {
		t.Fatalf("Load().Messages = %+v, want the two seeded messages", st.Messages)
	}
	if gotCommand[0] != "GET" {
		t.Fatalf("command[0] = %v, want GET", gotCommand[0])
	}
}

func TestUpstashRedisStoreLoadMissing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":null}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	_, err = store.Load(context.Background(), "nope")
	if !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() error = %v, want ErrStateNotFound", err)
	}
}

func TestUpstashRedisStoreServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"WRONGPASS invalid password"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if err := store.Delete(context.Background(), "session-3"); err == nil {
		t.Fatal("Delete() error = nil, want redis error surfaced")
	}
}

func TestNewUpstashRedisStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewUpstashRedisStore(UpstashRedisConfig{URL: "", Token: "t"}); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewUpstashRedisStore(UpstashRedisConfig{URL: "https://example.upstash.io", Token: ""}); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := NewUpstashRedisStore(UpstashRedisConfig{URL: "not a url", Token: "t"}); err == nil {
		t.Fatal("expected error for malformed url")
	}
}
