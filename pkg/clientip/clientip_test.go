package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/noticeboard/pkg/clientip"
)

func request(remote string, headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = remote
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestResolver_IP(t *testing.T) {
	t.Parallel()

	trusting := clientip.NewResolver(clientip.Config{
		TrustedHeaders: []string{"cf-connecting-ip", " X-Forwarded-For ", ""},
	})
	direct := clientip.NewResolver(clientip.Config{})

	tests := []struct {
		name     string
		resolver *clientip.Resolver
		req      *http.Request
		want     string
	}{
		{
			name:     "remote addr with port",
			resolver: direct,
			req:      request("192.0.2.10:5555", nil),
			want:     "192.0.2.10",
		},
		{
			name:     "remote addr without port",
			resolver: direct,
			req:      request("192.0.2.11", nil),
			want:     "192.0.2.11",
		},
		{
			name:     "ipv6 remote normalized",
			resolver: direct,
			req:      request("[2001:0db8::0001]:443", nil),
			want:     "2001:db8::1",
		},
		{
			name:     "untrusted header ignored",
			resolver: direct,
			req:      request("192.0.2.10:1", map[string]string{"X-Forwarded-For": "203.0.113.5"}),
			want:     "192.0.2.10",
		},
		{
			name:     "trusted header priority",
			resolver: trusting,
			req: request("192.0.2.10:1", map[string]string{
				"CF-Connecting-IP": "198.51.100.7",
				"X-Forwarded-For":  "203.0.113.5",
			}),
			want: "198.51.100.7",
		},
		{
			name:     "first valid forwarded entry",
			resolver: trusting,
			req:      request("192.0.2.10:1", map[string]string{"X-Forwarded-For": "garbage, 203.0.113.5, 10.0.0.1"}),
			want:     "203.0.113.5",
		},
		{
			name:     "invalid headers fall back to remote",
			resolver: trusting,
			req:      request("192.0.2.10:1", map[string]string{"CF-Connecting-IP": "nope"}),
			want:     "192.0.2.10",
		},
		{
			name:     "nothing parseable",
			resolver: direct,
			req:      request("not-an-ip", nil),
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.resolver.IP(tt.req))
		})
	}
}

func TestResolver_Middleware(t *testing.T) {
	t.Parallel()
	var got string
	h := clientip.NewResolver(clientip.Config{}).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = clientip.FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), request("192.0.2.44:9000", nil))
	assert.Equal(t, "192.0.2.44", got)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()
	ex := clientip.LoggerExtractor()

	_, ok := ex(context.Background())
	assert.False(t, ok)

	attr, ok := ex(clientip.WithContext(context.Background(), "192.0.2.1"))
	assert.True(t, ok)
	assert.Equal(t, "client_ip", attr.Key)
	assert.Equal(t, "192.0.2.1", attr.Value.String())
}
