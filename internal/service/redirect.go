package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/Totarae/TransferRedirect/internal/transfer"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mocks/mock_poster.go -package=mocks github.com/Totarae/TransferRedirect/internal/service Poster

// TargetParam имя query-параметра со ссылкой для трансфера.
const TargetParam = "r"

// SourceField имя поля формы, в котором провайдер ждёт ссылку.
const SourceField = "src"

// KeySource отдаёт API-ключ текущего клиента. Пустая строка значит "ключа нет".
type KeySource interface {
	APIKey(ctx context.Context) string
}

// Poster отправляет multipart-форму.
type Poster interface {
	PostMultipart(ctx context.Context, url string, fields map[string]string, headers http.Header) (*transfer.Response, error)
}

// Navigator переводит клиента на другую страницу.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc адаптер функции к Navigator.
type NavigatorFunc func(url string)

// Navigate вызывает f(url).
func (f NavigatorFunc) Navigate(url string) { f(url) }

// Outcome результат одного Execute.
type Outcome int

const (
	// OutcomeSkipped нет ключа или параметра r, запрос не отправлялся.
	OutcomeSkipped Outcome = iota
	// OutcomeNavigated трансфер создан, клиент перенаправлен.
	OutcomeNavigated
	// OutcomeRejected провайдер ответил status=error.
	OutcomeRejected
	// OutcomeFailed ошибка транспорта или разбора ответа.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNavigated:
		return "navigated"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// RedirectService создаёт трансфер по ссылке из параметра r и перенаправляет клиента.
type RedirectService struct {
	Poster      Poster
	ProviderURL string
	ListURL     string
	Logger      *zap.Logger
}

func NewRedirectService(poster Poster, providerURL, listURL string, logger *zap.Logger) *RedirectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectService{
		Poster:      poster,
		ProviderURL: providerURL,
		ListURL:     listURL,
		Logger:      logger,
	}
}

// Target достаёт значение параметра r из URL страницы.
// ok == false, если параметра нет; ?r= даёт пустую строку и ok == true.
func Target(page *url.URL) (string, bool) {
	if page == nil {
		return "", false
	}
	// ParseQuery продолжает разбор после битых пар, поэтому ошибку не смотрим.
	values, _ := url.ParseQuery(page.RawQuery)
	vals, ok := values[TargetParam]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Execute выполняет один проход: ключ, параметр, запрос, переход или лог.
// Ошибки наружу не возвращаются.
func (s *RedirectService) Execute(ctx context.Context, page *url.URL, keys KeySource, nav Navigator) Outcome {
	var apiKey string
	if keys != nil {
		apiKey = keys.APIKey(ctx)
	}
	target, ok := Target(page)
	if apiKey == "" || !ok {
		return OutcomeSkipped
	}

	headers := http.Header{}
	headers.Set("Content-Type", "multipart/form-data")
	headers.Set("Accept", "application/json")

	resp, err := s.Poster.PostMultipart(ctx,
		transfer.CreateEndpoint(s.ProviderURL, apiKey),
		map[string]string{SourceField: target},
		headers)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var se *transfer.StatusError
		if errors.As(err, &se) {
			fields = append(fields, zap.Int("status_code", se.StatusCode), zap.ByteString("body", se.Body))
		}
		s.Logger.Error("transfer request failed", fields...)
		return OutcomeFailed
	}

	tr, err := transfer.DecodeResponse(resp.Body)
	if err != nil {
		s.Logger.Error("transfer request failed",
			zap.Error(err),
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", resp.Body),
		)
		return OutcomeFailed
	}

	if tr.Failed() {
		s.Logger.Error("transfer rejected",
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", tr.Message),
			zap.ByteString("body", resp.Body),
		)
		return OutcomeRejected
	}

	s.Logger.Info("transfer created", zap.String("id", tr.ID), zap.String("name", tr.Name))
	if nav != nil {
		nav.Navigate(s.ListURL)
	}
	return OutcomeNavigated
}
