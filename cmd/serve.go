package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jacobterminal/earnings-terminal/internal/corpus"
	"github.com/jacobterminal/earnings-terminal/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the records and backfill HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		corpusPath, _ := cmd.Flags().GetString("corpus")
		if corpusPath == "" {
			return eris.New("--corpus is required")
		}

		env, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		items, err := corpus.LoadNews(corpusPath)
		if err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/records/{ticker}", func(w http.ResponseWriter, req *http.Request) {
			year, _ := strconv.Atoi(req.URL.Query().Get("year"))
			recs := env.Records.ListForTicker(chi.URLParam(req, "ticker"), year)
			writeJSON(w, http.StatusOK, recs)
		})

		r.Get("/records/{ticker}/{year}/{quarter}", func(w http.ResponseWriter, req *http.Request) {
			year, err := strconv.Atoi(chi.URLParam(req, "year"))
			if err != nil {
				http.Error(w, `{"error":"invalid year"}`, http.StatusBadRequest)
				return
			}
			quarter, err := model.ParseQuarter(chi.URLParam(req, "quarter"))
			if err != nil {
				http.Error(w, `{"error":"invalid quarter"}`, http.StatusBadRequest)
				return
			}
			rec := env.Records.Get(chi.URLParam(req, "ticker"), year, quarter)
			if rec == nil {
				http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, rec)
		})

		r.Post("/backfill", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Ticker  string `json:"ticker"`
				Year    int    `json:"year"`
				Quarter string `json:"quarter"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			quarter, err := model.ParseQuarter(body.Quarter)
			if err != nil || body.Ticker == "" || body.Year == 0 {
				http.Error(w, `{"error":"ticker, year and quarter are required"}`, http.StatusBadRequest)
				return
			}

			applied := env.Orchestrator.RequestBackfill(req.Context(), body.Ticker, body.Year, quarter, items)
			writeJSON(w, http.StatusOK, map[string]any{
				"key":     model.RecordKey(body.Ticker, body.Year, quarter),
				"applied": applied,
			})
		})

		r.Post("/news/updated", func(w http.ResponseWriter, _ *http.Request) {
			env.Orchestrator.MarkNewsIndexUpdated()
			writeJSON(w, http.StatusOK, map[string]int64{
				"news_index_version": env.Orchestrator.NewsIndexVersion(),
			})
		})

		r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"records":  env.Records.Count(),
				"backfill": env.Orchestrator.Stats(),
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(drainCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("corpus_items", len(items)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().String("corpus", "", "path to news corpus file (yaml or json)")
	rootCmd.AddCommand(serveCmd)
}
