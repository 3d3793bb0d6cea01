package main

import (
	"embed"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kdudkov/valentine/internal/config"
	"github.com/kdudkov/valentine/internal/model"
	"github.com/kdudkov/valentine/internal/repository"
	"github.com/kdudkov/valentine/pkg/log"
	"github.com/kdudkov/valentine/staticfiles"
)

const notFoundDetail = "Invitation not found. Please check the ID."

//go:embed templates
var templates embed.FS

type HttpServer struct {
	app  *App
	f    *fiber.App
	addr string
	log  *slog.Logger
}

func NewHttp(app *App, addr string) *HttpServer {
	srv := &HttpServer{
		app:  app,
		addr: addr,
		log:  app.logger.With("logger", "http"),
	}

	engine := html.NewFileSystem(http.FS(templates), ".html")

	engine.Delims("[[", "]]")

	// Immutable: form values end up in long-lived store maps
	srv.f = fiber.New(fiber.Config{
		EnablePrintRoutes:     false,
		DisableStartupMessage: true,
		Immutable:             true,
		Views:                 engine,
		BodyLimit:             64 * 1024,
		ErrorHandler:          errorHandler,
	})

	srv.f.Use(log.NewFiberLogger(&log.LoggerConfig{Name: "http", DoMetrics: true}))

	staticfiles.Embed(srv.f)

	srv.f.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Redirect("/make-invitation")
	})

	srv.f.Get("/make-invitation", getLandingHandler(app))
	srv.f.Post("/generate", getGenerateHandler(app))
	srv.f.Get("/ask/:id", getAskHandler(app))
	srv.f.Get("/check-all-invitation", getAllInvitationsHandler(app))
	srv.f.Get("/health", getHealthHandler(app))
	srv.f.Get("/metrics", getMetricsHandler())

	return srv
}

func (h *HttpServer) Address() string {
	return h.addr
}

func (h *HttpServer) Listen() error {
	h.log.Info("listening http at " + h.addr)

	return h.f.Listen(h.addr)
}

func (h *HttpServer) Shutdown() error {
	return h.f.Shutdown()
}

func errorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	detail := http.StatusText(code)

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		detail = e.Message
	}

	return ctx.Status(code).JSON(fiber.Map{"detail": detail})
}

func getLandingHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		data := fiber.Map{
			"title": "Create Valentine Invite",
			"page":  "landing",
			"max":   app.config.NameMaxLen(),
		}

		return ctx.Render("templates/landing", data, "templates/layout")
	}
}

func getGenerateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		name := ctx.FormValue("name")

		if err := model.CheckName(name, app.config.NameMaxLen()); err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		id, err := app.invitations.Create(ctx.UserContext(), name)
		if err != nil {
			return err
		}

		invitationsCreated.With(prometheus.Labels{"backend": app.config.Backend()}).Inc()
		app.logger.Info("invitation created", slog.Int64("id", id))

		data := fiber.Map{
			"title": "Your Valentine Link",
			"page":  "generated",
			"name":  name,
			"link":  app.BaseURL(ctx) + "/ask/" + strconv.FormatInt(id, 10),
			"js":    []string{"generated.js"},
		}

		return ctx.Render("templates/generated", data, "templates/layout")
	}
}

func getAskHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		name, err := app.invitations.Get(ctx.UserContext(), ctx.Params("id"))

		if errors.Is(err, repository.ErrNotFound) {
			invitationLookups.With(prometheus.Labels{"result": "not_found"}).Inc()

			return fiber.NewError(fiber.StatusNotFound, notFoundDetail)
		}

		if err != nil {
			invitationLookups.With(prometheus.Labels{"result": "error"}).Inc()

			return err
		}

		invitationLookups.With(prometheus.Labels{"result": "found"}).Inc()

		data := fiber.Map{
			"title": "For " + name + " ❤️",
			"page":  "ask",
			"name":  name,
			"js":    []string{"ask.js"},
		}

		return ctx.Render("templates/ask", data, "templates/layout")
	}
}

func getAllInvitationsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		all, err := app.invitations.All(ctx.UserContext())
		if err != nil {
			return err
		}

		return ctx.JSON(all)
	}
}

func getHealthHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		status, database := "ok", "connected"

		if app.config.Backend() == config.BackendFile {
			database = "ok"
		}

		if err := app.invitations.Ping(ctx.UserContext()); err != nil {
			app.logger.Warn("store ping failed", slog.Any("error", err))
			storeUp.Set(0)

			status, database = "degraded", "error: "+err.Error()
		} else {
			storeUp.Set(1)
		}

		return ctx.JSON(fiber.Map{"status": status, "database": database})
	}
}

func getMetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
