package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitperfect/internal/api"
	"github.com/mmynk/splitperfect/internal/auth"
	"github.com/mmynk/splitperfect/internal/metrics"
	"github.com/mmynk/splitperfect/internal/middleware"
	"github.com/mmynk/splitperfect/internal/storage/sqlite"
)

type testEnv struct {
	url string
}

type testClients struct {
	auth    api.AuthServiceClient
	group   api.GroupServiceClient
	expense api.ExpenseServiceClient
	summary api.SummaryServiceClient
}

// setupTestServer starts all four services behind the real auth interceptor,
// backed by a fresh SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	m := metrics.New()

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwtManager,
			api.AuthServiceRegisterProcedure,
			api.AuthServiceLoginProcedure,
		),
		middleware.LoggingInterceptor(slog.Default()),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, store, jwtManager, slog.Default()), interceptors))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store), interceptors))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(store), interceptors))
	mux.Handle(api.NewSummaryServiceHandler(NewSummaryService(store, m), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{url: server.URL}
}

// withToken attaches a bearer token to every call.
func withToken(token string) connect.ClientOption {
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}))
}

func (e *testEnv) clients(token string) testClients {
	opt := withToken(token)
	return testClients{
		auth:    api.NewAuthServiceClient(http.DefaultClient, e.url, opt),
		group:   api.NewGroupServiceClient(http.DefaultClient, e.url, opt),
		expense: api.NewExpenseServiceClient(http.DefaultClient, e.url, opt),
		summary: api.NewSummaryServiceClient(http.DefaultClient, e.url, opt),
	}
}

// user registers a new account and returns authenticated clients plus the user ID.
func (e *testEnv) user(t *testing.T, name string) (testClients, string) {
	t.Helper()
	resp, err := e.clients("").auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return e.clients(resp.Msg.Token), resp.Msg.User.ID
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}
