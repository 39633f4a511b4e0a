package v2

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/Totarae/TransferRedirect/internal/service"
	"github.com/Totarae/TransferRedirect/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubPoster struct {
	body   string
	err    error
	gotURL string
	gotSrc string
}

func (p *stubPoster) PostMultipart(_ context.Context, u string, fields map[string]string, _ http.Header) (*transfer.Response, error) {
	p.gotURL = u
	p.gotSrc = fields[service.SourceField]
	if p.err != nil {
		return nil, p.err
	}
	return &transfer.Response{StatusCode: http.StatusOK, Body: []byte(p.body)}, nil
}

func startServer(t *testing.T, poster service.Poster, fallbackKey string) *TransferServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	svc := service.NewRedirectService(poster, "https://provider.example", "https://provider.example/transfers", zap.NewNop())
	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryLoggingInterceptor(zap.NewNop())))
	RegisterTransferServiceServer(srv, NewGRPCServer(svc, fallbackKey, zap.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewTransferServiceClient(conn)
}

func withKey(key string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), MetadataAPIKey, key)
}

func TestCreateTransfer_Success(t *testing.T) {
	poster := &stubPoster{body: `{"status":"success","id":"t1"}`}
	client := startServer(t, poster, "")

	loc, err := client.CreateTransfer(withKey("secret"), "magnet:?xt=urn:btih:abc&dn=a b")
	require.NoError(t, err)

	assert.Equal(t, "https://provider.example/transfers", loc)
	assert.Equal(t, "magnet:?xt=urn:btih:abc&dn=a b", poster.gotSrc)
	assert.Equal(t, "https://provider.example/api/transfer/create?apikey=secret", poster.gotURL)
}

func TestCreateTransfer_FallbackKey(t *testing.T) {
	poster := &stubPoster{body: `{"status":"success"}`}
	client := startServer(t, poster, "shared")

	_, err := client.CreateTransfer(context.Background(), "abc")
	require.NoError(t, err)
	assert.Contains(t, poster.gotURL, "apikey=shared")
}

func TestCreateTransfer_Codes(t *testing.T) {
	tests := []struct {
		name   string
		poster *stubPoster
		ctx    context.Context
		src    string
		code   codes.Code
	}{
		{"no key", &stubPoster{}, context.Background(), "abc", codes.Unauthenticated},
		{"empty src", &stubPoster{}, withKey("k"), "  ", codes.InvalidArgument},
		{"rejected", &stubPoster{body: `{"status":"error","message":"bad"}`}, withKey("k"), "abc", codes.FailedPrecondition},
		{"transport", &stubPoster{err: errors.New("refused")}, withKey("k"), "abc", codes.Unavailable},
		{"malformed", &stubPoster{body: `oops`}, withKey("k"), "abc", codes.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := startServer(t, tt.poster, "")
			_, err := client.CreateTransfer(tt.ctx, tt.src)
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}
