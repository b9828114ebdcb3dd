package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/janisto/pipeline-responder/internal/http/responder"
	"github.com/janisto/pipeline-responder/internal/http/routes"
	"github.com/janisto/pipeline-responder/internal/platform/config"
	applog "github.com/janisto/pipeline-responder/internal/platform/logging"
	appmiddleware "github.com/janisto/pipeline-responder/internal/platform/middleware"
	"github.com/janisto/pipeline-responder/internal/platform/respond"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const (
	docsPath        = "/api-docs"
	shutdownTimeout = 10 * time.Second
)

func main() {
	defer func() { _ = applog.Sync() }()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		applog.LogWarn(context.Background(), "ignoring .env", zap.Error(err))
	}

	if err := newApp().Run(os.Args); err != nil {
		applog.LogError(context.Background(), "server failed", err)
		_ = applog.Sync()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "pipeline-responder",
		Usage:   "Serve fixed text on GET / and GET /hello",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML config file",
				EnvVars: []string{"RESPONDER_CONFIG"},
			},
			&cli.StringFlag{
				Name:        "port",
				Usage:       "listen port",
				EnvVars:     []string{"PORT"},
				DefaultText: config.DefaultPort,
			},
			&cli.StringFlag{
				Name:    "root-message",
				Usage:   "body returned by GET /",
				EnvVars: []string{"ROOT_MESSAGE"},
			},
			&cli.StringFlag{
				Name:    "hello-message",
				Usage:   "body returned by GET /hello",
				EnvVars: []string{"HELLO_MESSAGE"},
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "minimum log level (debug, info, warn, error)",
				EnvVars:     []string{"LOG_LEVEL"},
				DefaultText: config.DefaultLogLevel,
			},
			&cli.StringFlag{
				Name:    "project-id",
				Usage:   "Google Cloud project used to link logs to traces",
				EnvVars: []string{"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT", "PROJECT_ID"},
			},
		},
		Action: serveAction,
	}
}

// resolveConfig layers defaults, the optional YAML file, then flags and env vars.
func resolveConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return cfg, err
		}
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"port", &cfg.Port},
		{"root-message", &cfg.RootMessage},
		{"hello-message", &cfg.HelloMessage},
		{"log-level", &cfg.LogLevel},
		{"project-id", &cfg.ProjectID},
	} {
		if c.IsSet(f.name) {
			*f.dst = c.String(f.name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serveAction(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	srv := newServer(cfg.Addr(), newRouter(cfg))
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return run(ctx, srv, ln)
}

func newRouter(cfg config.Config) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For; only deploy behind the platform router.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20),
		applog.RequestLogger(cfg.ProjectID),
		applog.AccessLogger(),
		respond.Recoverer(),
		// GetHead answers HEAD on every GET route; net/http drops the body.
		chimiddleware.GetHead,
	)

	hcfg := huma.DefaultConfig("Pipeline Responder", Version)
	hcfg.DocsPath = docsPath
	api := humachi.New(router, hcfg)
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, mirrorCBORContent)

	routes.Register(api, messagesFrom(cfg), Version)
	return router
}

func messagesFrom(cfg config.Config) responder.Messages {
	return responder.Messages{Root: cfg.RootMessage, Hello: cfg.HelloMessage}
}

// mirrorCBORContent documents application/cbor wherever application/json is offered.
func mirrorCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
}

// run serves on ln until ctx is done, then shuts the server down gracefully.
func run(ctx context.Context, srv *http.Server, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening", zap.String("addr", ln.Addr().String()), zap.String("version", Version))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	applog.LogInfo(context.Background(), "server exited")
	return nil
}
