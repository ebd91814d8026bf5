package netutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ipServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolver_PublicIP_FirstProviderWins(t *testing.T) {
	t.Parallel()

	first := ipServer(t, "203.0.113.7\n")
	second := ipServer(t, "198.51.100.1")

	r := NewResolver()
	r.Providers = []string{first.URL, second.URL}

	ip, err := r.PublicIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", ip)
}

func TestResolver_PublicIP_SkipsGarbage(t *testing.T) {
	t.Parallel()

	garbage := ipServer(t, "<html>blocked</html>")
	good := ipServer(t, "2001:db8::1")

	r := NewResolver()
	r.Providers = []string{garbage.URL, good.URL}

	ip, err := r.PublicIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::1", ip)
}

func TestResolver_PublicIP_SkipsUnreachable(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	good := ipServer(t, "192.0.2.10")

	r := NewResolver()
	r.Providers = []string{dead.URL, good.URL}

	ip, err := r.PublicIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.10", ip)
}

func TestResolver_PublicIP_AllFail(t *testing.T) {
	t.Parallel()

	garbage := ipServer(t, "not an ip")
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	r := NewResolver()
	r.Providers = []string{garbage.URL, dead.URL}

	ip, err := r.PublicIP(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ip)
}
