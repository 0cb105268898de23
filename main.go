package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ovgu-assistant/campus-assistant/agent/agents/orchestrator"
	topicx "github.com/ovgu-assistant/campus-assistant/agent/agents/topic"
	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
	llmx "github.com/ovgu-assistant/campus-assistant/agent/llm"
	statex "github.com/ovgu-assistant/campus-assistant/agent/state"
	"github.com/ovgu-assistant/campus-assistant/api"
	configx "github.com/ovgu-assistant/campus-assistant/pkg/config"
	databasex "github.com/ovgu-assistant/campus-assistant/pkg/database"
	logx "github.com/ovgu-assistant/campus-assistant/pkg/logger"
	_ "github.com/ovgu-assistant/campus-assistant/pkg/logger/autoload"
	metricsx "github.com/ovgu-assistant/campus-assistant/pkg/metrics"
)

// Flags must be declared before the first config load parses the command line.
var mode = flag.String("mode", "serve", "run mode: serve or demo")

var demoQueries = []string{
	"What are the opening hours for the OVGU Mensa?",
	"Tell me about the Magdeburg Cathedral.",
	"What is the application deadline for the DKE master at FIN?",
	"How can I get from the Hauptbahnhof to the Elbauenpark?",
	"Where is the OVGU library?",
	"Recommend a good restaurant in Magdeburg.",
	"What's the capital of Germany?",
}

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	llmCfg := configx.MustNew[llmx.Config]("OPENAI")
	limits := configx.MustNew[topicx.Limits]("AGENT")
	dbCfg := configx.MustNew[databasex.Config]("VECTOR_DB")
	storeCfg := configx.MustNew[statex.StoreConfig]("SESSION_STORE")
	upstashCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	redisCfg := configx.MustNew[statex.RedisConfig]("REDIS")
	orchestratorCfg := configx.MustNew[orchestrator.Config]("ORCHESTRATOR")
	serverCfg := configx.MustNew[api.Config]("SERVER")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := databasex.Connect(ctx, *dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("main: vector store unavailable")
	}
	defer db.Close()

	registry, err := topicx.NewRegistry(ctx, *llmCfg, *limits)
	if err != nil {
		log.Fatal().Err(err).Msg("main: build agent registry")
	}

	store, err := statex.NewStore(ctx, *storeCfg, *upstashCfg, *redisCfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", storeCfg.Driver).Msg("main: build session store")
	}

	recorder := metricsx.New()
	orch, err := orchestrator.New(registry, topicx.NewDepsProvider(*llmCfg, db), store, recorder, *orchestratorCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("main: build orchestrator")
	}

	switch *mode {
	case "demo":
		runDemo(ctx, orch)
	case "serve":
		if err := serve(ctx, orch, recorder, *serverCfg); err != nil {
			log.Fatal().Err(err).Msg("main: server stopped")
		}
	default:
		log.Fatal().Str("mode", *mode).Msg("main: unknown mode")
	}
}

func runDemo(ctx context.Context, orch *orchestrator.Orchestrator) {
	sessionID := uuid.NewString()
	log.Info().Str("session_id", sessionID).Int("queries", len(demoQueries)).Msg("demo: starting")

	for _, query := range demoQueries {
		if ctx.Err() != nil {
			return
		}
		fmt.Printf("\n--- Query: %q ---\n", query)
		out, err := orch.Invoke(ctx, contractx.NewTurnState(query), sessionID)
		if err != nil && out == nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Printf("Topic: %s\n", out.ChosenAgent)
		if out.Err != nil {
			fmt.Printf("Error: %s\n", out.Err.Error())
		}
		fmt.Printf("Answer:\n%s\n", out.AgentOutcome)
	}
}

func serve(ctx context.Context, orch *orchestrator.Orchestrator, recorder *metricsx.Recorder, cfg api.Config) error {
	server, err := api.NewServer(orch,
		api.WithObserver(recorder),
		api.WithMetricsHandler(recorder.Handler()),
	)
	if err != nil {
		return err
	}
	httpServer := server.HTTPServer(cfg)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server: listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
