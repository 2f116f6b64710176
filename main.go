package main

import (
	"log"
	"net/http"
	"net/http/pprof"

	"daxforge/adapters/llm"
	"daxforge/adapters/llm/heuristic"
	"daxforge/adapters/postgres"
	"daxforge/internal/api"
	"daxforge/internal/config"
	"daxforge/internal/errors"
	"daxforge/internal/session"
	"daxforge/ports"
	"daxforge/ui"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects the optional usage ledger. A missing DATABASE_URL
// disables accounting; it never disables the wizard.
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, nil
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if err := postgres.EnsureSchema(db); err != nil {
		return nil, errors.Wrap(err, "failed to ensure ledger schema")
	}
	return db, nil
}

// buildSuggester selects the hosted collaborator when an API key is present,
// otherwise the deterministic offline heuristics
func buildSuggester(appConfig *config.Config, usage ports.UsageRecorder) ports.Suggester {
	if appConfig.AI.OpenAIKey == "" {
		log.Println("[Main] OPENAI_API_KEY not set, using heuristic suggester")
		return heuristic.NewSuggester()
	}
	client := llm.NewClient(appConfig.AI)
	return llm.NewOpenAISuggester(client, usage)
}

// startOpsServer runs the chi sidecar with health and pprof endpoints
func startOpsServer(appConfig *config.Config) {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if appConfig.Ops.PprofEnabled {
		r.Route("/debug/pprof", func(r chi.Router) {
			r.Get("/", pprof.Index)
			r.Get("/cmdline", pprof.Cmdline)
			r.Get("/profile", pprof.Profile)
			r.Get("/symbol", pprof.Symbol)
			r.Get("/trace", pprof.Trace)
			r.Get("/{name}", func(w http.ResponseWriter, req *http.Request) {
				pprof.Handler(chi.URLParam(req, "name")).ServeHTTP(w, req)
			})
		})
	}

	addr := ":" + appConfig.Ops.Port
	log.Printf("[Main] Ops server listening on %s (pprof=%v)", addr, appConfig.Ops.PprofEnabled)
	go func() {
		if err := http.ListenAndServe(addr, r); err != nil {
			log.Printf("[Main] Ops server stopped: %v", err)
		}
	}()
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	var usage ports.UsageRecorder
	if db != nil {
		defer db.Close()
		usage = postgres.NewUsageRepository(db)
		log.Println("[Main] Usage ledger enabled")
	}

	suggester := buildSuggester(appConfig, usage)
	hub := api.NewSSEHub()
	store := session.NewStore()
	pipeline := session.NewPipeline(store, suggester, hub)

	startOpsServer(appConfig)

	server := ui.NewServer(appConfig, store, pipeline, suggester, hub)
	if err := server.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
