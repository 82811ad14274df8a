package textx_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-answer-grader/pkg/textx"
)

func TestSanitizeText_StripsControlChars(t *testing.T) {
	t.Parallel()
	in := "a\x00b\x07c\td\ne"
	assert.Equal(t, "ab\tc\td\ne", textx.SanitizeText("a\x00b\tc\td\ne"))
	assert.NotContains(t, textx.SanitizeText(in), "\x00")
}

func TestSanitizeText_Trims(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hello", textx.SanitizeText("  hello \n"))
}

func TestCollapseSpace(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a b c", textx.CollapseSpace(" a\n\n b\t\tc "))
	assert.Equal(t, "", textx.CollapseSpace(" \n\t "))
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc", textx.Truncate("abc", 10))
	assert.Equal(t, "abcd...", textx.Truncate("abcdefghij", 7))
	assert.Equal(t, "ab", textx.Truncate("abcdefghij", 2))
}

func TestTruncate_NeverSplitsRunes(t *testing.T) {
	t.Parallel()
	s := "αβγδε" // 2 bytes per rune
	assert.Equal(t, "α...", textx.Truncate(s, 5))
	assert.Equal(t, "α", textx.Truncate(s, 3))
	assert.Equal(t, "日本...", textx.Truncate("日本語テキスト", 10))
	for _, max := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9} {
		assert.True(t, utf8.ValidString(textx.Truncate(s, max)), "maxLen=%d", max)
	}
}
