package snippet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"empty", "", 400, ""},
		{"markdown link keeps label", "[x](https://example.com)", 400, "x"},
		{"html tags become spaces", "<b>y</b>", 400, "y"},
		{"markdown header stripped", "## Reflections\nsome text", 400, "Reflections some text"},
		{"backticks dropped", "use `val` here", 400, "use val here"},
		{"entities unescaped", "a &amp; b &lt;c&gt; &quot;d&quot; &#39;e&#39;&nbsp;f", 400, `a & b <c> "d" 'e' f`},
		{"whitespace collapsed", "a\n\n  b\t\tc", 400, "a b c"},
		{"nested markup", "<p>The [tafsir](url) of &quot;Al-Kahf&quot;</p>", 400, `The tafsir of "Al-Kahf"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in, tt.max))
		})
	}
}

func TestClean_Truncation(t *testing.T) {
	long := strings.Repeat("abcd ", 200)

	got := Clean(long, 40)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len([]rune(got)), 43, "budget is maxChars plus the ellipsis")

	// No truncation marker when the text fits.
	assert.Equal(t, "short", Clean("short", 40))

	// maxChars <= 0 disables truncation entirely.
	assert.Equal(t, strings.TrimSpace(long), Clean(long, 0))
}

func TestClean_ArabicRuneBudget(t *testing.T) {
	arabic := strings.Repeat("بسم ", 30)

	got := Clean(arabic, 10)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len([]rune(got)), 13)
	// Truncation must not split a rune.
	assert.True(t, strings.HasPrefix(got, "بسم"))
}
