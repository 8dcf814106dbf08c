package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

func TestResolveClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "fly header wins", headers: map[string]string{"Fly-Client-IP": "203.0.113.7", "X-Real-IP": "198.51.100.1"}, remote: "10.0.0.1:1234", want: "203.0.113.7"},
		{name: "first forwarded hop", headers: map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.2"}, remote: "10.0.0.1:1234", want: "198.51.100.2"},
		{name: "garbage header falls through", headers: map[string]string{"X-Forwarded-For": "unknown"}, remote: "10.0.0.1:1234", want: "10.0.0.1"},
		{name: "ipv6 remote", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "mapped ipv4", headers: map[string]string{"X-Real-IP": "::ffff:192.0.2.10"}, want: "192.0.2.10"},
		{name: "nothing usable", remote: "pipe", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", "/v1/rewards/missions", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, resolveClientIP(r))
		})
	}
}

func TestRateLimitKey(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/v1/rewards/missions/daily_login/claim", nil)
	r.RemoteAddr = "192.0.2.4:5555"
	assert.Equal(t, "ip:192.0.2.4", rateLimitKey(r))

	r = r.WithContext(withPrincipal(r.Context(), user.Principal{UserID: "alice"}))
	assert.Equal(t, "user:alice", rateLimitKey(r))
}
