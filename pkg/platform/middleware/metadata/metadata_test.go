package metadata

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"lettings/pkg/requestcontext"
)

func run(t *testing.T, mw *Middleware, remote string, headers map[string]string) requestcontext.ClientMetadata {
	t.Helper()
	var got requestcontext.ClientMetadata
	h := mw.Handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = requestcontext.Client(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestClientIP(t *testing.T) {
	trusted := NewMiddleware(&Config{TrustedProxies: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}})
	untrusted := NewMiddleware(nil)

	t.Run("uses remote addr without proxies", func(t *testing.T) {
		got := run(t, untrusted, "203.0.113.9:5555", map[string]string{"X-Forwarded-For": "1.2.3.4"})
		assert.Equal(t, "203.0.113.9", got.IP)
	})

	t.Run("honours forwarded header from trusted proxy", func(t *testing.T) {
		got := run(t, trusted, "10.1.2.3:443", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.1.2.3"})
		assert.Equal(t, "198.51.100.7", got.IP)
	})

	t.Run("ignores malformed forwarded header", func(t *testing.T) {
		got := run(t, trusted, "10.1.2.3:443", map[string]string{"X-Forwarded-For": "not-an-ip"})
		assert.Equal(t, "10.1.2.3", got.IP)
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		got := run(t, trusted, "10.1.2.3:443", map[string]string{"X-Real-IP": "198.51.100.8"})
		assert.Equal(t, "198.51.100.8", got.IP)
	})

	t.Run("ipv6 remote", func(t *testing.T) {
		got := run(t, untrusted, "[2001:db8::1]:8080", nil)
		assert.Equal(t, "2001:db8::1", got.IP)
	})
}

func TestDeviceLabel(t *testing.T) {
	assert.Equal(t, "Unknown", DeviceLabel(""))
	assert.Equal(t, "Bot", DeviceLabel("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"))
	assert.Contains(t, DeviceLabel("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"), "Chrome on ")
}
