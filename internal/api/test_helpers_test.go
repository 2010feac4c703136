package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/terraincognita07/nyinsen/internal/content"
	"github.com/terraincognita07/nyinsen/internal/db"
	"github.com/terraincognita07/nyinsen/internal/notify"
	"github.com/terraincognita07/nyinsen/internal/ratelimit"
	"github.com/terraincognita07/nyinsen/internal/services"
	"gorm.io/gorm"
)

const (
	testSecretKey = "test-secret-key-with-at-least-32-chars"
	testPassword  = "StrongPass1!"
)

type capturingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (notifier *capturingNotifier) Method() string {
	return "capture"
}

func (notifier *capturingNotifier) Notify(_ context.Context, message notify.Message) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.messages = append(notifier.messages, message)
	return nil
}

func (notifier *capturingNotifier) count() int {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return len(notifier.messages)
}

type stubCompleter struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (completer *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	completer.mu.Lock()
	defer completer.mu.Unlock()
	completer.prompts = append(completer.prompts, prompt)
	return completer.answer, completer.err
}

type testAppOptions struct {
	chatLimit  int
	apiLimiter *ratelimit.TokenBucket
	completer  *stubCompleter
}

type testEnv struct {
	app       *fiber.App
	database  *gorm.DB
	repos     *db.Repositories
	notifier  *capturingNotifier
	completer *stubCompleter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, testAppOptions{})
}

func newTestEnvWithOptions(t *testing.T, options testAppOptions) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "nyinsen-api-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	catalog, err := content.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	repos := db.NewRepositories(database)
	logger, _ := test.NewNullLogger()

	notifier := &capturingNotifier{}
	alerts := services.NewRiskAlertService(repos.RiskAlerts, repos.NotificationLogs, repos.EmergencyContacts, repos.HealthcareProfessionals, repos.Profiles, notifier, catalog.EmergencyNumber)

	completer := options.completer
	if completer == nil {
		completer = &stubCompleter{answer: "Drink plenty of water and rest."}
	}
	chatLimit := options.chatLimit
	if chatLimit <= 0 {
		chatLimit = ratelimit.DefaultLimit
	}
	clock := clockwork.NewFakeClock()
	store := ratelimit.NewMemoryStore(clock, time.Minute)
	t.Cleanup(store.Close)
	chat := services.NewChatService(ratelimit.NewFixedWindow(store, clock, chatLimit, time.Minute), completer, repos.ChatMessages, logger)

	handler, err := NewHandler(Dependencies{
		Database:   database,
		Catalog:    catalog,
		Chat:       chat,
		Alerts:     alerts,
		APILimiter: options.apiLimiter,
		SecretKey:  []byte(testSecretKey),
		Location:   time.UTC,
		Log:        logger,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	return &testEnv{app: app, database: database, repos: repos, notifier: notifier, completer: completer}
}

func (env *testEnv) request(t *testing.T, method string, path string, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("%s %s read body failed: %v", method, path, err)
	}
	return response, payload
}

func (env *testEnv) expectStatus(t *testing.T, method string, path string, token string, body any, status int) []byte {
	t.Helper()

	response, payload := env.request(t, method, path, token, body)
	if response.StatusCode != status {
		t.Fatalf("%s %s expected status %d, got %d: %s", method, path, status, response.StatusCode, payload)
	}
	return payload
}

func (env *testEnv) registerUser(t *testing.T, email string) string {
	t.Helper()

	payload := env.expectStatus(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":            email,
		"password":         testPassword,
		"confirm_password": testPassword,
	}, http.StatusCreated)

	var session struct {
		Token string `json:"token"`
	}
	decodeJSON(t, payload, &session)
	if session.Token == "" {
		t.Fatal("register response carries no token")
	}
	return session.Token
}

func decodeJSON(t *testing.T, payload []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(payload, out); err != nil {
		t.Fatalf("decode %q: %v", payload, err)
	}
}

func readAPIError(t *testing.T, payload []byte) string {
	t.Helper()

	body := map[string]any{}
	decodeJSON(t, payload, &body)
	message, _ := body["error"].(string)
	return message
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func daysAgo(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
}
