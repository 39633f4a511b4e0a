package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Totarae/TransferRedirect/internal/auth"
	"github.com/Totarae/TransferRedirect/internal/feed"
	"github.com/Totarae/TransferRedirect/internal/handlers"
	"github.com/Totarae/TransferRedirect/internal/model"
	"github.com/Totarae/TransferRedirect/internal/router"
	"github.com/Totarae/TransferRedirect/internal/service"
	"github.com/Totarae/TransferRedirect/internal/transfer"
	"github.com/Totarae/TransferRedirect/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedPoster struct {
	srcs []string
}

func (p *fixedPoster) PostMultipart(_ context.Context, _ string, fields map[string]string, _ http.Header) (*transfer.Response, error) {
	p.srcs = append(p.srcs, fields["src"])
	return &transfer.Response{StatusCode: http.StatusOK, Body: []byte(`{"status":"success"}`)}, nil
}

// Полный сценарий: сохранить ключ, открыть ссылку, получить редирект.
func TestRouter_SessionFlow(t *testing.T) {
	poster := &fixedPoster{}
	svc := service.NewRedirectService(poster, "https://provider.example", "https://provider.example/transfers", zap.NewNop())
	h := handlers.NewHandler(svc, util.NewKeyStore(""), "http://links.example", "", zap.NewNop())

	srv := httptest.NewServer(router.NewRouter(h, auth.New("secret"), zap.NewNop()))
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	// без ключа ничего не происходит
	resp, err := client.Get(srv.URL + "/?r=first")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, poster.srcs)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/key", strings.NewReader(`{"apikey":"secret-key"}`))
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = client.Get(srv.URL + "/?r=" + url.QueryEscape("magnet:?xt=urn:btih:abc"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "https://provider.example/transfers", resp.Header.Get("Location"))
	assert.Equal(t, []string{"magnet:?xt=urn:btih:abc"}, poster.srcs)

	// другая сессия ключа не видит
	resp, err = http.Get(srv.URL + "/?r=second")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, poster.srcs, 1)
}

func TestRouter_UnknownRoute(t *testing.T) {
	svc := service.NewRedirectService(&fixedPoster{}, "https://provider.example", "https://provider.example/transfers", nil)
	h := handlers.NewHandler(svc, util.NewKeyStore(""), "http://links.example", "", nil)
	r := router.NewRouter(h, auth.New("secret"), zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

type releases []feed.Item

func (r releases) Fetch(context.Context) ([]feed.Item, error) { return r, nil }

// Подписка через API, опрос ленты, уведомление со ссылкой, переход по ссылке.
func TestRouter_SubscriptionFlow(t *testing.T) {
	poster := &fixedPoster{}
	svc := service.NewRedirectService(poster, "https://provider.example", "https://provider.example/transfers", zap.NewNop())
	h := handlers.NewHandler(svc, util.NewKeyStore(""), "http://links.example", "shared", zap.NewNop())

	srv := httptest.NewServer(router.NewRouter(h, auth.New("secret"), zap.NewNop()))
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	for _, p := range []string{`{"pattern":"Naruto"}`, `{"pattern":"One Piece;1080p"}`} {
		resp, postErr := client.Post(srv.URL+"/api/patterns", "application/json", strings.NewReader(p))
		require.NoError(t, postErr)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/patterns/0", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = client.Get(srv.URL + "/api/patterns")
	require.NoError(t, err)
	var list model.PatternsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	assert.Equal(t, []model.PatternItem{{Index: 0, Pattern: "One Piece;1080p"}}, list.Patterns)

	state := feed.NewMemoryState()
	published := time.Now()
	watcher := &feed.Watcher{
		Source:   releases{{Title: "[Sub] One Piece - 1100 [1080p]", Link: "magnet:?xt=urn:btih:abc", Published: published}},
		Patterns: h.Patterns,
		Notifier: h.Inbox,
		State:    state,
		BaseURL:  h.BaseURL,
		Logger:   zap.NewNop(),
	}
	delivered, err := watcher.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	resp, err = client.Get(srv.URL + "/api/notifications")
	require.NoError(t, err)
	var notes []model.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notes))
	resp.Body.Close()
	require.Len(t, notes, 1)
	assert.Equal(t, "http://links.example/?r=magnet%3A%3Fxt%3Durn%3Abtih%3Aabc", notes[0].Link)

	link, err := url.Parse(notes[0].Link)
	require.NoError(t, err)
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err = client.Get(srv.URL + "/?" + link.RawQuery)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, []string{"magnet:?xt=urn:btih:abc"}, poster.srcs)
}
