package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Totarae/TransferRedirect/internal/auth"
	"github.com/Totarae/TransferRedirect/internal/handlers"
	"github.com/Totarae/TransferRedirect/internal/service"
	"github.com/Totarae/TransferRedirect/internal/transfer"
	"github.com/Totarae/TransferRedirect/internal/util"
	"go.uber.org/zap"
)

type okPoster struct{}

func (okPoster) PostMultipart(context.Context, string, map[string]string, http.Header) (*transfer.Response, error) {
	return &transfer.Response{StatusCode: http.StatusOK, Body: []byte(`{"status":"success"}`)}, nil
}

func setupTestHandler(b *testing.B) *handlers.Handler {
	store := util.NewKeyStore("")
	if err := store.Set(context.Background(), "bench-user", "bench-key"); err != nil {
		b.Fatal(err)
	}
	svc := service.NewRedirectService(okPoster{}, "https://provider.example", "https://provider.example/transfers", zap.NewNop())
	return handlers.NewHandler(svc, store, "http://localhost:8080", "", zap.NewNop())
}

func BenchmarkRedirect(b *testing.B) {
	handler := setupTestHandler(b)
	req := httptest.NewRequest(http.MethodGet, "/?r=magnet%3A%3Fxt%3Durn%3Abtih%3Aabc", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "bench-user"))

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler.Redirect(rec, req)
	}
}

func BenchmarkCreateLink(b *testing.B) {
	handler := setupTestHandler(b)
	body := `{"url": "magnet:?xt=urn:btih:c12fe1c06bba254a9dc9f519b335aa7c1367a88a&dn=benchmark"}`

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/link", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.CreateLink(rec, req)
	}
}
