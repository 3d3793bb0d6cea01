package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/kdudkov/valentine/internal/config"
	"github.com/kdudkov/valentine/internal/repository"
)

var (
	gitRevision = "unknown"
	gitBranch   = "unknown"
)

type App struct {
	logger      *slog.Logger
	config      *config.AppConfig
	invitations repository.InvitationRepository
}

func NewApp(cfg *config.AppConfig) (*App, error) {
	repo, err := repository.New(cfg)
	if err != nil {
		return nil, err
	}

	return newAppWithRepo(cfg, repo), nil
}

func newAppWithRepo(cfg *config.AppConfig, repo repository.InvitationRepository) *App {
	return &App{
		logger:      slog.Default().With("logger", "app"),
		config:      cfg,
		invitations: repo,
	}
}

// BaseURL is the configured public url or, when unset, the one the request came to.
func (app *App) BaseURL(ctx *fiber.Ctx) string {
	if u := app.config.BaseURL(); u != "" {
		return u
	}

	return ctx.BaseURL()
}

func (app *App) Run() error {
	if err := app.invitations.Start(); err != nil {
		return fmt.Errorf("error starting invitation store: %w", err)
	}

	defer app.invitations.Stop()

	app.logger.Info("using " + app.config.Backend() + " invitation store")

	srv := NewHttp(app, app.config.Addr())

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Listen()
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-c:
		app.logger.Info("exiting...")
	case err := <-errCh:
		return err
	}

	return srv.Shutdown()
}

func main() {
	fmt.Printf("version %s %s\n", gitRevision, gitBranch)

	conf := flag.String("config", "", "name of config file")
	debug := flag.Bool("debug", false, "debug")
	flag.Parse()

	var level slog.LevelVar

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &level})))

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := config.NewAppConfig()

	if *conf != "" {
		if err := cfg.Load(*conf); err != nil {
			slog.Error("config error", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if *debug {
		cfg.Set("debug", true)
	}

	if cfg.Debug() {
		level.Set(slog.LevelDebug)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("can't create app", slog.Any("error", err))
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		slog.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}
