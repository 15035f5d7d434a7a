// Command ember-server hosts chat rooms over a WebSocket listen socket,
// plus /health and /metrics on the same HTTP mux (§6).
//
// Grounded on the teacher's cmd/v1/session/main.go: same godotenv
// bootstrap, gin router with a WS upgrade route alongside /health and
// /metrics, same signal-driven graceful shutdown via http.Server.Shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/emberhall/ember/internal/config"
	"github.com/emberhall/ember/internal/logging"
	"github.com/emberhall/ember/internal/ratelimit"
	"github.com/emberhall/ember/internal/server"
	"github.com/emberhall/ember/internal/wire"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func main() {
	// Absence of a .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.LoadServer()
	if err != nil {
		panic(err)
	}

	if err := logging.Initialize(cfg.GoEnv != "production"); err != nil {
		panic(err)
	}
	ctx := context.Background()

	limiter, err := ratelimit.NewSendLimiter(cfg.RateLimitSend)
	if err != nil {
		logging.Get().Fatal("invalid send rate limit", zap.Error(err))
	}

	srv := server.New().WithSendLimiter(limiter)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/", func(c *gin.Context) {
		handleUpgrade(srv, c)
	})

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		logging.Info(ctx, "ember-server starting", zap.String("addr", cfg.ListenAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Get().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logging.Get().Error("forced shutdown", zap.Error(err))
	}
	logging.Info(ctx, "ember-server exiting")
}

// handleUpgrade promotes one HTTP request to a WebSocket and hands it to
// Server.HandleConn, running the connection's maintenance loop (§4.1
// ping/pong and idle timeout) alongside the command loop until either
// ends.
func handleUpgrade(srv *server.Server, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error(c.Request.Context(), "websocket upgrade failed", zap.Error(err))
		return
	}

	conn := wire.NewConn(ws, wire.DefaultIdleTimeout)
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	maintainErr := make(chan error, 1)
	go func() { maintainErr <- conn.Maintain(ctx) }()

	if err := srv.HandleConn(ctx, conn); err != nil {
		logging.Warn(ctx, "connection ended", zap.Error(err))
	}
	cancel()
	<-maintainErr
}
