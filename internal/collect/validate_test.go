package collect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericID(t *testing.T) {
	t.Parallel()

	valid := []string{"12345", "123456789", "12345678901", " 987654321 "}
	for _, v := range valid {
		assert.NoError(t, NumericID(v), v)
	}

	invalid := []string{"", "abc", "0", "1234", "012345", "123456789012", "12345a"}
	for _, v := range invalid {
		assert.Error(t, NumericID(v), v)
	}
}

func TestDomain(t *testing.T) {
	t.Parallel()

	valid := []string{"example.com", "cloud.example.com", "a.b.c.d.example.co.uk", "xn--nxasmq6b.example"}
	for _, v := range valid {
		assert.NoError(t, Domain(v), v)
	}

	invalid := []string{"", "localhost", "http://example.com", "example.com/path", "-bad.example.com", "exa mple.com"}
	for _, v := range invalid {
		assert.Error(t, Domain(v), v)
	}
}

func TestPort(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Port("1"))
	assert.NoError(t, Port("8080"))
	assert.NoError(t, Port("65535"))

	assert.Error(t, Port("0"))
	assert.Error(t, Port("65536"))
	assert.Error(t, Port("-1"))
	assert.Error(t, Port("http"))
	assert.Error(t, Port(""))
}

func TestNonEmpty(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NonEmpty("x"))
	assert.Error(t, NonEmpty(""))
	assert.Error(t, NonEmpty("   "))
}

func TestKeyList(t *testing.T) {
	t.Parallel()

	assert.NoError(t, KeyList("sk-one"))
	assert.NoError(t, KeyList("sk-one,sk-two"))
	assert.NoError(t, KeyList("sk-one, ,sk-two"))

	assert.Error(t, KeyList(""))
	assert.Error(t, KeyList(", ,"))
}

func TestMinLength(t *testing.T) {
	t.Parallel()

	v := MinLength(8)
	assert.NoError(t, v("longenough"))
	assert.Error(t, v("short"))
	assert.Error(t, v(strings.Repeat(" ", 10)))
}
