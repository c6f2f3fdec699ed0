package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinSplitList(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"nil", nil, ""},
		{"single", []string{"a"}, "a"},
		{"several", []string{"a", "b c", "d"}, "a;b c;d"},
		{"separator in item", []string{"a;b"}, `a\;b`},
		{"escape in item", []string{`a\b`}, `a\\b`},
		{"empty middle item", []string{"a", "", "b"}, "a;;b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinList(tt.items)
			assert.Equal(t, tt.want, got)

			back, err := SplitList(got)
			require.NoError(t, err)
			assert.Equal(t, tt.items, back)
		})
	}
}

func TestSplitListRejectsBadEscape(t *testing.T) {
	for _, in := range []string{`a\`, `a\b`} {
		_, err := SplitList(in)
		assert.Error(t, err, in)
	}
}
