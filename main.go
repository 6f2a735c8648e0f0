package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/assistant"
	contractx "github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/contract"
	sessionx "github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/session"
	toolx "github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/tool"
	bookingx "github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/booking"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/resolve"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/schedule"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/store"
	configx "github.com/ai-alihassanml/BarberFlow-agent-langchain/pkg/config"
	groqx "github.com/ai-alihassanml/BarberFlow-agent-langchain/pkg/groq"
	_ "github.com/ai-alihassanml/BarberFlow-agent-langchain/pkg/logger/autoload"
)

type AppConfig struct {
	DatabaseURL string        `envconfig:"DATABASE_URL" split_words:"true"`
	TurnTimeout time.Duration `envconfig:"TURN_TIMEOUT" split_words:"true" default:"60s"`

	UpstashRedisURL   string `envconfig:"UPSTASH_REDIS_URL" split_words:"true"`
	UpstashRedisToken string `envconfig:"UPSTASH_REDIS_TOKEN" split_words:"true"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")

	st, cleanup, err := openStore(ctx, appCfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer cleanup()

	if err := store.Seed(ctx, st); err != nil {
		log.Fatal().Err(err).Msg("seed store")
	}

	groqCfg := configx.MustNew[groqx.Config]("GROQ")
	if err := groqx.Ping(ctx, *groqCfg); err != nil {
		log.Warn().Err(err).Msg("groq endpoint check failed, continuing anyway")
	}
	chatModel, err := groqCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create chat model")
	}

	resolver := resolve.NewBarberResolver(st.Barbers)
	engine := schedule.NewEngine(st.Barbers, st.Appointments)
	bookings := bookingx.NewService(resolver, engine, st.Appointments)
	gateway := toolx.NewGateway(st.Barbers, resolver, engine, bookings)

	agent, err := assistant.New(chatModel, gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("create assistant")
	}

	sessions := openSessionStore(*appCfg)

	runChat(ctx, agent, sessions, appCfg.TurnTimeout)
}

func openStore(ctx context.Context, dsn string) (store.Store, func(), error) {
	if strings.TrimSpace(dsn) == "" {
		log.Info().Msg("no DATABASE_URL set, using in-memory store")
		return store.NewMemory(), func() {}, nil
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		return store.Store{}, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := store.InitSchema(ctx, db); err != nil {
		return store.Store{}, nil, fmt.Errorf("init schema: %w", err)
	}

	log.Info().Msg("connected to postgres store")
	return store.NewBun(db), func() { _ = db.Close() }, nil
}

func openSessionStore(cfg AppConfig) sessionx.Store {
	if strings.TrimSpace(cfg.UpstashRedisURL) == "" {
		return sessionx.NewMemoryStore()
	}
	upstash, err := sessionx.NewUpstashRedisStore(sessionx.UpstashRedisConfig{
		URL:   cfg.UpstashRedisURL,
		Token: cfg.UpstashRedisToken,
	})
	if err != nil {
		log.Warn().Err(err).Msg("upstash session store unavailable, using memory")
		return sessionx.NewMemoryStore()
	}
	return upstash
}

func runChat(ctx context.Context, agent *assistant.Assistant, sessions sessionx.Store, turnTimeout time.Duration) {
	sessionID := uuid.NewString()

	fmt.Println("Welcome to BarberFlow! Type 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "quit") || strings.EqualFold(text, "exit") {
			fmt.Println("Goodbye!")
			break
		}

		if err := handleTurn(ctx, agent, sessions, sessionID, text, turnTimeout); err != nil {
			log.Error().Err(err).Msg("turn failed")
			fmt.Println("Assistant: Sorry, something went wrong. Please try again.")
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("read input")
	}
}

func handleTurn(
	ctx context.Context,
	agent *assistant.Assistant,
	sessions sessionx.Store,
	sessionID string,
	text string,
	turnTimeout time.Duration,
) error {
	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	state, err := sessions.Load(turnCtx, sessionID)
	if err != nil {
		if !errors.Is(err, sessionx.ErrStateNotFound) {
			return fmt.Errorf("load session: %w", err)
		}
		state = sessionx.NewState(sessionID, "", time.Now())
	}

	fmt.Print("Assistant: ")
	streamed := false
	out, err := agent.HandleTurn(turnCtx, contractx.TurnInput{
		SessionID: sessionID,
		History:   state.Messages,
		Text:      text,
		OnDelta: func(delta string) {
			streamed = true
			fmt.Print(delta)
		},
	})
	if err != nil {
		fmt.Println()
		return err
	}
	if !streamed {
		fmt.Print(out.Reply)
	}
	fmt.Println()

	state.Append(out.Messages...)
	state.Trim(sessionx.DefaultHistoryLimit)
	state.Touch(time.Now())
	if err := sessions.Save(turnCtx, state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
