package validation

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewURLValidator(t *testing.T) {
	v := NewURLValidator()
	require.NotNil(t, v)
	assert.False(t, v.AllowLocalhost)
	assert.False(t, v.AllowPrivateIPs)
	assert.Equal(t, 2048, v.MaxLength)

	p := NewPermissiveURLValidator()
	assert.True(t, p.AllowLocalhost)
	assert.True(t, p.AllowPrivateIPs)
}

func TestURLValidator_ValidateAndNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "https article", input: "https://www.thehindu.com/news/national/article1.ece", want: "https://www.thehindu.com/news/national/article1.ece"},
		{name: "trims space", input: "  https://example.com/a  ", want: "https://example.com/a"},
		{name: "keeps query", input: "https://example.com/a?id=1&x=y", want: "https://example.com/a?id=1&x=y"},
		{name: "empty", input: "", wantErr: "cannot be empty"},
		{name: "javascript scheme", input: "javascript:alert(1)", wantErr: "http or https"},
		{name: "file scheme", input: "file:///etc/passwd", wantErr: "http or https"},
		{name: "no scheme", input: "example.com/a", wantErr: "http or https"},
		{name: "markup", input: "https://example.com/<script>", wantErr: "invalid characters"},
		{name: "localhost", input: "http://localhost:8080/a", wantErr: "localhost"},
		{name: "loopback ip", input: "http://127.0.0.1/a", wantErr: "localhost"},
		{name: "private ip", input: "http://192.168.1.10/a", wantErr: "private IP"},
		{name: "javascript in query", input: "https://example.com/?next=javascript:alert(1)", wantErr: "suspicious"},
		{name: "too long", input: "https://example.com/" + strings.Repeat("a", 2100), wantErr: "too long"},
	}

	v := NewURLValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPermissiveURLValidator_AllowsLocalEndpoints(t *testing.T) {
	v := NewPermissiveURLValidator()

	for _, input := range []string{
		"http://localhost:8080/v2/everything",
		"http://127.0.0.1:0/v2/everything",
		"http://10.0.0.5/rss/search",
		"http://[::1]:9000/a",
	} {
		_, err := v.ValidateAndNormalize(input)
		assert.NoError(t, err, input)
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := map[string]bool{
		"10.1.2.3":      true,
		"172.16.0.1":    true,
		"192.168.0.1":   true,
		"169.254.1.1":   true,
		"127.0.0.1":     true,
		"fd00::1":       true,
		"fe80::1":       true,
		"8.8.8.8":       false,
		"2001:4860::1":  false,
		"103.21.244.10": false,
	}
	for addr, want := range tests {
		assert.Equal(t, want, isPrivateIP(net.ParseIP(addr)), addr)
	}
}
