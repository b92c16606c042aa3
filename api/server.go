// Package api exposes the live schedule, its report and the command history
// as read-only JSON endpoints. Edits go through the CLI only.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/wheelsched/api/commands"
	"github.com/kilianp07/wheelsched/api/timeline"
	"github.com/kilianp07/wheelsched/core/cmdlog"
	"github.com/kilianp07/wheelsched/infra/logger"
)

// Config controls the HTTP listener. An empty Listen disables it.
type Config struct {
	Listen string `json:"listen"`
	// Token, when set, is required as a bearer token on /api/commands.
	Token string `json:"token"`
}

// NewRouter mounts the endpoints on a dedicated ServeMux.
func NewRouter(src timeline.Source, history cmdlog.Querier, token string, loc *time.Location) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/timeline", timeline.NewTimelineHandler(src))
	mux.Handle("/api/report", timeline.NewReportHandler(src))
	mux.Handle("/api/commands", commands.NewHistoryHandler(history, token, loc))
	return mux
}

// Serve runs h on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	log := logger.New("api")
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("serving api on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
