// Package transfer содержит HTTP-клиент API провайдера трансферов.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/Totarae/TransferRedirect/internal/model"
)

// CreatePath путь ручки создания трансфера у провайдера.
const CreatePath = "/api/transfer/create"

var (
	// ErrUnexpectedStatus провайдер ответил не 2xx.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrMalformedResponse тело ответа не разбирается как JSON со status.
	ErrMalformedResponse = errors.New("malformed transfer response")
)

// Response сырой ответ провайдера.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError возвращается при ответе не из диапазона 2xx.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %d", ErrUnexpectedStatus, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Client отправляет multipart-запросы провайдеру.
type Client struct {
	HTTP *http.Client
}

// NewClient создаёт клиент. nil означает http.DefaultClient.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{HTTP: httpClient}
}

// PostMultipart отправляет POST с multipart/form-data телом из fields.
// Content-Type из headers заменяется значением с boundary.
func (c *Client) PostMultipart(ctx context.Context, endpoint string, fields map[string]string, headers http.Header) (*Response, error) {
	body, contentType, err := encodeForm(fields)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// url.Error содержит адрес целиком, вместе с ключом
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = RedactURL(ue.URL)
		}
		return nil, fmt.Errorf("post transfer: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: data}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func encodeForm(fields map[string]string) (*bytes.Buffer, string, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// CreateEndpoint строит URL создания трансфера с ключом в query.
func CreateEndpoint(base, apiKey string) string {
	q := url.Values{}
	q.Set("apikey", apiKey)
	return strings.TrimSuffix(base, "/") + CreatePath + "?" + q.Encode()
}

// RedactURL заменяет значение apikey в адресе.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	if q.Has("apikey") {
		q.Set("apikey", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// DecodeResponse разбирает тело ответа провайдера.
func DecodeResponse(body []byte) (model.TransferResponse, error) {
	var tr model.TransferResponse
	// null и прочие не-объекты json.Unmarshal пропускает без ошибки
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return tr, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return tr, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return tr, nil
}
