package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"StockScraper/internal/app"
	"StockScraper/internal/models"
)

const (
	msgDiffDone    = "Products scraped and baseline updated successfully"
	msgForwardDone = "Products scraped and forwarded successfully"
	msgFailed      = "An error occurred while processing the request"
)

// Runner is the part of the application the HTTP shell triggers.
type Runner interface {
	RunDiff(ctx context.Context) (app.Result, error)
	RunReturn(ctx context.Context) (app.Result, error)
	RunForward(ctx context.Context, targetURL string) (app.Result, error)
}

// Handler returns the router for the trigger endpoints.
func Handler(runner Runner, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /getProducts", diffHandler(runner, log))
	mux.HandleFunc("GET /products", productsHandler(runner, log))
	mux.HandleFunc("POST /forwardProducts", forwardHandler(runner, log))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// Start serves the trigger endpoints on port until ctx is done, then shuts
// down gracefully.
func Start(ctx context.Context, runner Runner, port string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           Handler(runner, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type productsResponse struct {
	Count    int              `json:"count"`
	Products []models.Product `json:"products"`
}

func diffHandler(runner Runner, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := runner.RunDiff(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, models.RunResponse{Message: msgDiffDone, Count: res.Count})
	}
}

func productsHandler(runner Runner, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := runner.RunReturn(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		products := res.Products
		if products == nil {
			products = []models.Product{}
		}
		writeJSON(w, http.StatusOK, productsResponse{Count: res.Count, Products: products})
	}
}

func forwardHandler(runner Runner, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ForwardRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body: " + err.Error()})
				return
			}
		}

		res, err := runner.RunForward(r.Context(), req.WebhookURL)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, models.RunResponse{Message: msgForwardDone, Count: res.Count})
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	log.Error("request failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: msgFailed})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
