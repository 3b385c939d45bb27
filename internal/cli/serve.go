package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	fiberzap "github.com/gofiber/contrib/v3/zap"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/chat"
	"github.com/seuros/posturai/internal/config"
	"github.com/seuros/posturai/internal/feed"
	"github.com/seuros/posturai/internal/handlers"
	"github.com/seuros/posturai/internal/httpx"
	"github.com/seuros/posturai/internal/logging"
	"github.com/seuros/posturai/internal/metrics"
	"github.com/seuros/posturai/internal/middleware"
	"github.com/seuros/posturai/internal/realtime"
	"github.com/seuros/posturai/internal/topics"
	"github.com/seuros/posturai/internal/upstream"
)

const (
	appName         = "PosturAI"
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PosturAI web server",
	Long: `Start the PosturAI web server.

The server renders the statistics dashboard and the topic chat, and relays
questions, statistics and alerts to the monitoring backend.

Environment variables:
  PORT              Server port (default: 3000)
  BACKEND_URL       Monitoring backend (default: http://localhost:5000)
  REQUEST_TIMEOUT   Backend request timeout (default: 15s)
  STATS_CACHE_TTL   Statistics cache lifetime (default: 60s)
  POLL_INTERVAL     Alert feed polling interval (default: 20s)
  TRUSTED_ORIGINS   Comma separated hosts allowed to post from a browser

Sending SIGHUP reloads the trusted origins.

Example:
  BACKEND_URL="http://monitor.local:5000" posturai serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// server is a fully wired application. start launches the background
// workers, close stops them.
type server struct {
	app       *fiber.App
	cfg       *config.Config
	client    *upstream.Client
	chats     *chat.Store
	hub       *realtime.Hub
	scheduler *feed.Scheduler
	origins   *middleware.TrustedOrigins
	metrics   *metrics.Manager
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer logging.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	srv, err := newServer(cfg, ViewsFS, AssetsFS)
	if err != nil {
		return err
	}
	srv.start()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go srv.reloadOnHangup(ctx)

	errCh := make(chan error, 1)
	go func() {
		logging.L().Info("posturai starting",
			zap.String("port", cfg.Port),
			zap.String("backend", srv.client.BaseURL()),
			zap.String("version", Version))
		errCh <- srv.app.Listen(":"+cfg.Port, createListenConfig())
	}()

	select {
	case err := <-errCh:
		srv.close()
		return err
	case <-ctx.Done():
	}

	logging.L().Info("shutting down")
	if err := srv.shutdown(shutdownTimeout); err != nil {
		return err
	}
	return <-errCh
}

func newServer(cfg *config.Config, views, assets fs.FS) (*server, error) {
	if views == nil {
		return nil, errors.New("views are not available")
	}

	m := metrics.NewManager("posturai", "http", prometheus.NewRegistry())

	client, err := upstream.NewClient(upstream.Options{
		BaseURL:  cfg.BackendURL,
		Timeout:  cfg.RequestTimeout,
		CacheTTL: cfg.StatsCacheTTL,
		Metrics:  m,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backend: %w", err)
	}

	catalog := topics.Default()
	hub := realtime.NewHub()
	srv := &server{
		cfg:       cfg,
		client:    client,
		chats:     chat.NewStore(catalog, client, chat.DefaultIdleTimeout, m),
		hub:       hub,
		scheduler: feed.NewScheduler(client, hub, cfg.PollInterval, m),
		origins:   middleware.NewTrustedOrigins(cfg.TrustedOrigins),
		metrics:   m,
	}

	engine := html.NewFileSystem(http.FS(views), ".html")
	app := fiber.New(createFiberConfig(appName, engine))

	app.Use(recoverer.New())
	app.Use(fiberzap.New(fiberzap.Config{Logger: logging.L()}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
	}))
	app.Use(middleware.Version(Version))
	app.Use(middleware.RequestMetrics(m))
	app.Use(middleware.RequireTrustedOrigin(srv.origins))

	if assets != nil {
		app.Get("/assets/:filename", handleAsset(assets))
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	app.Get("/ws/feed", realtime.Upgrade, hub.Handler())

	handlers.New(handlers.Deps{
		Stats:   client,
		Backend: client,
		Chats:   srv.chats,
		Topics:  catalog,
		Feed:    srv.scheduler,
		Version: Version,
	}).Register(app)

	srv.app = app
	return srv, nil
}

func (s *server) start() {
	s.chats.Start(sweepInterval)
	s.scheduler.Start()
}

func (s *server) close() {
	s.scheduler.Stop()
	s.chats.Stop()
	s.hub.Close()
}

// shutdown stops the background workers and the hub before the listener,
// so feed clients get their close frame first.
func (s *server) shutdown(timeout time.Duration) error {
	s.close()
	if err := s.app.ShutdownWithTimeout(timeout); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// reloadOnHangup re-reads the trusted origins on SIGHUP until ctx is done.
func (s *server) reloadOnHangup(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := s.reloadOrigins(); err != nil {
				logging.L().Warn("config reload failed", zap.Error(err))
			}
		}
	}
}

func (s *server) reloadOrigins() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s.origins.Set(cfg.TrustedOrigins)
	logging.L().Info("trusted origins reloaded", zap.Strings("origins", cfg.TrustedOrigins))
	return nil
}

// handleAsset serves files from the embedded assets directory.
func handleAsset(assets fs.FS) fiber.Handler {
	return func(c fiber.Ctx) error {
		name := path.Clean(c.Params("filename"))
		data, err := fs.ReadFile(assets, name)
		if err != nil {
			return fiber.ErrNotFound
		}

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return c.Send(data)
	}
}

// errorHandler renders unhandled errors with the JSON error envelope.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logging.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return httpx.Error(c, code, message)
}
