package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/odds-chat/internal/model"
)

var servePort int

// turnRunner answers one message against caller-supplied history.
type turnRunner interface {
	Turn(ctx context.Context, userID, text string, history []model.ChatMessage) (string, []model.ChatMessage)
}

// sportsSource lists the cached sports catalog.
type sportsSource interface {
	Sports(ctx context.Context, forceRefresh bool) []model.Sport
}

type chatRequest struct {
	UserID     string              `json:"user_id"`
	NewMessage string              `json:"new_message"`
	History    []model.ChatMessage `json:"history"`
}

type chatResponse struct {
	Response       string              `json:"response"`
	UpdatedHistory []model.ChatMessage `json:"updated_history"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chatbot HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initChat(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildMux(env.Chat, env.Catalog, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)

		// Warm the catalog so the first request doesn't pay for the fetch.
		g.Go(func() error {
			n := len(env.Catalog.Sports(gctx, false))
			zap.L().Info("catalog warmed", zap.Int("sports", n))
			return nil
		})

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		// Graceful shutdown
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

// buildMux wires the HTTP routes. Either dependency may be nil, in which
// case its routes answer 503.
func buildMux(turns turnRunner, sports sportsSource, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/chatbot", func(w http.ResponseWriter, r *http.Request) {
		if turns == nil {
			http.Error(w, `{"error":"chat unavailable"}`, http.StatusServiceUnavailable)
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
			return
		}
		if req.UserID == "" || req.NewMessage == "" {
			http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
			return
		}

		reply, updated := turns.Turn(r.Context(), req.UserID, req.NewMessage, req.History)
		writeJSON(w, http.StatusOK, chatResponse{Response: reply, UpdatedHistory: updated})
	})

	r.Get("/sports", func(w http.ResponseWriter, r *http.Request) {
		if sports == nil {
			http.Error(w, `{"error":"catalog unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		list := sports.Sports(r.Context(), r.URL.Query().Get("refresh") == "true")
		if list == nil {
			list = []model.Sport{}
		}
		writeJSON(w, http.StatusOK, list)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("serve: encode response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
