package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/support/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestServer_StartStop(t *testing.T) {
	srv := NewServer(
		server.WithAddress("127.0.0.1:0"),
		WithHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "ok")
		})),
	)

	require.NoError(t, srv.Start())

	rsp, err := http.Get("http://" + srv.Address() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(rsp.Body)
	rsp.Body.Close()

	assert.Equal(t, "ok", string(body))
	assert.NoError(t, srv.Stop(context.Background()))
}

func TestNewServer_RequiresHandler(t *testing.T) {
	assert.Panics(t, func() { NewServer() })
}

func TestMiddleware_Order(t *testing.T) {
	var order []string

	mark := func(name string) func(h http.Handler) http.Handler {
		return func(h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				h.ServeHTTP(w, r)
			})
		}
	}

	srv := NewServer(
		WithHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})),
		WithMiddleware(mark("outer"), mark("inner")),
	).(*httpServer)

	srv.server.Handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestLogging_RecordsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	h := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.Equal(t, "/brew", fields["path"])
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	h := Recover(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"internal server error"}`, rec.Body.String())
	assert.Equal(t, 1, logs.Len())
}

func TestCORS_Preflight(t *testing.T) {
	preflight := func(h http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	unreachable := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight reached the handler")
	})

	t.Run("explicit origin allows credentials", func(t *testing.T) {
		rec := preflight(CORS("https://shop.example.com")(unreachable), "https://shop.example.com")

		assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard never allows credentials", func(t *testing.T) {
		rec := preflight(CORS()(unreachable), "https://evil.example.com")

		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unlisted origin is not allowed", func(t *testing.T) {
		rec := preflight(CORS("https://shop.example.com")(unreachable), "https://evil.example.com")

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
