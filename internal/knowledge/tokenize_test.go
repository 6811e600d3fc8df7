package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{"cjk per character", "几点", []string{"几", "点"}},
		{"latin runs", "what time is dinner", []string{"what", "time", "is", "dinner"}},
		{"single latin char dropped", "a 点", []string{"点"}},
		{"single digit dropped", "下午2点", []string{"下", "午", "点"}},
		{"mixed", "wifi密码", []string{"wifi", "密", "码"}},
		{"dedup", "点点 wifi wifi", []string{"点", "wifi"}},
		{"lowercased", "WiFi", []string{"wifi"}},
		{"punctuation only", "?！。", nil},
		{"empty", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Tokenize(tc.query))
		})
	}
}
