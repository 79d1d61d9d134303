package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "modernc.org/sqlite"

	"github.com/tinywasm/authflow"
	"github.com/tinywasm/authflow/apitest"
)

type config struct {
	Addr           string        `env:"DEVAPI_ADDR" envDefault:":8000"`
	DBPath         string        `env:"DEVAPI_DB" envDefault:"devapi.db"`
	JWTSecret      string        `env:"DEVAPI_JWT_SECRET" envDefault:"devapi-secret"`
	AllowedOrigins []string      `env:"DEVAPI_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	AccessTTL      time.Duration `env:"DEVAPI_ACCESS_TTL" envDefault:"15m"`
}

func main() {
	log.SetPrefix("[DEVAPI] ")

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		log.Fatalf("sqlite open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	api, err := apitest.New(apitest.Config{
		Exec:      authflow.DB{DB: db},
		JWTSecret: []byte(cfg.JWTSecret),
		AccessTTL: cfg.AccessTTL,
		Mailer:    apitest.LogMailer(log.Printf),
	})
	if err != nil {
		log.Fatalf("apitest: %v", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept", "Authorization"},
		MaxAge:         300,
	}))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/api/auth", api)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
