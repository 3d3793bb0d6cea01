package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kdudkov/valentine/internal/config"
	"github.com/kdudkov/valentine/internal/repository"
)

type TestApp struct {
	*App
	srv *HttpServer
}

func NewTestApp(t *testing.T, cfg *config.AppConfig, repo repository.InvitationRepository) *TestApp {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	require.NoError(t, repo.Start())
	t.Cleanup(repo.Stop)

	app := &TestApp{App: newAppWithRepo(cfg, repo)}
	app.srv = NewHttp(app.App, "localhost:1234")

	return app
}

func NewFileTestApp(t *testing.T) *TestApp {
	cfg := config.NewAppConfig()
	cfg.Set("invitations_file", filepath.Join(t.TempDir(), "invitations.json"))

	app, err := NewApp(cfg)
	require.NoError(t, err)

	return NewTestApp(t, cfg, app.invitations)
}

func (app *TestApp) Req(method, target string, body io.Reader) *http.Response {
	req := httptest.NewRequest(method, target, body)

	resp, err := app.srv.f.Test(req, 3000)
	if err != nil {
		panic(err)
	}

	return resp
}

func (app *TestApp) PostForm(target string, values url.Values) *http.Response {
	req := httptest.NewRequest("POST", target, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, err := app.srv.f.Test(req, 3000)
	if err != nil {
		panic(err)
	}

	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}

func readJSON(t *testing.T, resp *http.Response) map[string]string {
	m := make(map[string]string)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))

	return m
}

type brokenRepo struct{}

var errDown = errors.New("store is down")

func (brokenRepo) Start() error { return nil }
func (brokenRepo) Stop()        {}
func (brokenRepo) Create(context.Context, string) (int64, error) {
	return 0, errDown
}
func (brokenRepo) Get(context.Context, string) (string, error) {
	return "", errDown
}
func (brokenRepo) All(context.Context) (map[string]string, error) {
	return nil, errDown
}
func (brokenRepo) Ping(context.Context) error { return errDown }

func TestLandingPage(t *testing.T) {
	app := NewFileTestApp(t)

	resp := app.Req("GET", "/make-invitation", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	require.Contains(t, body, `action="/generate"`)
	require.Contains(t, body, `name="name"`)
	require.Contains(t, body, `maxlength="100"`)
	require.Contains(t, body, "/static/css/valentine.css")

	resp = app.Req("GET", "/", nil)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	require.Equal(t, "/make-invitation", resp.Header.Get(fiber.HeaderLocation))
}

func TestGenerateAndAsk(t *testing.T) {
	app := NewFileTestApp(t)

	resp := app.PostForm("/generate", url.Values{"name": {"Alex"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "http://example.com/ask/1")

	resp = app.PostForm("/generate", url.Values{"name": {"Sam"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "http://example.com/ask/2")

	resp = app.Req("GET", "/ask/1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	require.Contains(t, body, `<span class="name-highlight">Alex</span>`)
	require.Contains(t, body, "will you be my Valentine?")
	require.Contains(t, body, "/static/js/ask.js")

	resp = app.Req("GET", "/check-all-invitation", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]string{"1": "Alex", "2": "Sam"}, readJSON(t, resp))
}

func TestAskNotFound(t *testing.T) {
	app := NewFileTestApp(t)

	for _, id := range []string{"1", "99", "abc"} {
		resp := app.Req("GET", "/ask/"+id, nil)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		require.Equal(t, map[string]string{"detail": notFoundDetail}, readJSON(t, resp))
	}
}

func TestGenerateValidation(t *testing.T) {
	app := NewFileTestApp(t)

	for name, values := range map[string]url.Values{
		"missing":  {},
		"empty":    {"name": {""}},
		"blank":    {"name": {"   "}},
		"too_long": {"name": {strings.Repeat("x", 101)}},
	} {
		t.Run(name, func(t *testing.T) {
			resp := app.PostForm("/generate", values)
			require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
			require.NotEmpty(t, readJSON(t, resp)["detail"])
		})
	}

	resp := app.PostForm("/generate", url.Values{"name": {strings.Repeat("💘", 100)}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = app.Req("GET", "/check-all-invitation", nil)
	require.Len(t, readJSON(t, resp), 1)
}

func TestNameIsEscaped(t *testing.T) {
	app := NewFileTestApp(t)

	evil := "<script>alert(1)</script>"

	resp := app.PostForm("/generate", url.Values{"name": {evil}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotContains(t, readBody(t, resp), evil)

	resp = app.Req("GET", "/ask/1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	require.NotContains(t, body, evil)
	require.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")

	// stored verbatim, escaped only on output
	resp = app.Req("GET", "/check-all-invitation", nil)
	require.Equal(t, evil, readJSON(t, resp)["1"])
}

func TestBaseURL(t *testing.T) {
	cfg := config.NewAppConfig()
	cfg.Set("invitations_file", filepath.Join(t.TempDir(), "invitations.json"))
	cfg.Set("base_url", "https://love.example.org/")

	app := NewTestApp(t, cfg, repository.NewFileInvitationRepo(cfg.InvitationsFile()))

	resp := app.PostForm("/generate", url.Values{"name": {"Alex"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "https://love.example.org/ask/1")
}

func TestHealthFile(t *testing.T) {
	app := NewFileTestApp(t)

	resp := app.Req("GET", "/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]string{"status": "ok", "database": "ok"}, readJSON(t, resp))
}

func TestHealthRedis(t *testing.T) {
	s := miniredis.RunT(t)

	cfg := config.NewAppConfig()
	cfg.Set("backend", config.BackendRedis)

	repo := repository.NewRedisInvitationRepo(redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1}))
	app := NewTestApp(t, cfg, repo)

	resp := app.Req("GET", "/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]string{"status": "ok", "database": "connected"}, readJSON(t, resp))

	resp = app.PostForm("/generate", url.Values{"name": {"Alex"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = app.Req("GET", "/ask/1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "Alex")

	s.Close()

	resp = app.Req("GET", "/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	m := readJSON(t, resp)
	require.Equal(t, "degraded", m["status"])
	require.True(t, strings.HasPrefix(m["database"], "error: "))
}

func TestStoreFailure(t *testing.T) {
	cfg := config.NewAppConfig()
	app := NewTestApp(t, cfg, brokenRepo{})

	resp := app.PostForm("/generate", url.Values{"name": {"Alex"}})
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, map[string]string{"detail": "Internal Server Error"}, readJSON(t, resp))

	resp = app.Req("GET", "/ask/1", nil)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp = app.Req("GET", "/check-all-invitation", nil)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp = app.Req("GET", "/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]string{"status": "degraded", "database": "error: store is down"}, readJSON(t, resp))
}

func TestMetricsAndStatic(t *testing.T) {
	app := NewFileTestApp(t)

	resp := app.PostForm("/generate", url.Values{"name": {"Alex"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = app.Req("GET", "/metrics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	require.Contains(t, body, "valentine_invitations_created_total")
	require.Contains(t, body, "valentine_http_requests_total")

	resp = app.Req("GET", "/static/css/valentine.css", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
