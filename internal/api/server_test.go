package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-forecast-api/internal/config"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
	"github.com/vfg2006/sales-forecast-api/internal/usecases/authenticating"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.Server{Host: "127.0.0.1", Port: "0", AllowedOrigins: []string{"http://localhost:3000"}},
		Auth:   config.Auth{Secret: "segredo"},
	}
}

func TestNew_RequiresAuthenticator(t *testing.T) {
	_, err := New(testConfig(), Services{})
	assert.Error(t, err)
}

func TestNewHandler_Routes(t *testing.T) {
	cfg := testConfig()
	auth := authenticating.NewService(cfg)
	h := NewHandler(cfg, Services{Authenticator: auth})

	adminToken, err := auth.GenerateToken("ops", domain.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{name: "Healthcheck sem token", method: http.MethodGet, path: "/healthcheck", status: http.StatusOK},
		{name: "Métricas sem token", method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{name: "Status exige token", method: http.MethodGet, path: "/v1/cron/all/status", status: http.StatusUnauthorized},
		{name: "Status com token de admin", method: http.MethodGet, path: "/v1/cron/all/status", token: adminToken, status: http.StatusOK},
		{name: "Rota de cache ausente sem serviço", method: http.MethodPost, path: "/v1/cache/novoon/invalidate", token: adminToken, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestServer_RunStopsWithContext(t *testing.T) {
	cfg := testConfig()
	srv, err := New(cfg, Services{Authenticator: authenticating.NewService(cfg)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("servidor não desligou")
	}
}
