package playback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit_ParagraphBoundaries(t *testing.T) {
	segments := Split("Para 1.\n\nPara 2.\n\nPara 3.")

	assert.Len(t, segments, 3)
	assert.Equal(t, "Para 1.", segments[0].Text)
	assert.Equal(t, "Para 2.", segments[1].Text)
	assert.Equal(t, "Para 3.", segments[2].Text)
	for i, seg := range segments {
		assert.Equal(t, i, seg.Index)
	}
}

func TestSplit_NoBlankLinesYieldsSingleSegment(t *testing.T) {
	text := "One line.\nStill the same paragraph."
	segments := Split(text)

	assert.Len(t, segments, 1)
	assert.Equal(t, text, segments[0].Text)
}

func TestSplit_DropsWhitespaceOnlyPieces(t *testing.T) {
	segments := Split("First.\n\n   \n\nSecond.\n\n\n\n")

	assert.Len(t, segments, 2)
	for _, seg := range segments {
		assert.NotEmpty(t, strings.TrimSpace(seg.Text))
	}
}

func TestSplit_PreservesContentOrder(t *testing.T) {
	segments := Split("  alpha  \n\nbeta\n\ngamma ")

	var texts []string
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, texts)
}

func TestSplit_EmptyInput(t *testing.T) {
	assert.Empty(t, Split(""))
	assert.Empty(t, Split("   \n\n \n  "))
}

func TestSplit_WindowsLineEndings(t *testing.T) {
	segments := Split("Para 1.\r\n\r\nPara 2.")

	assert.Len(t, segments, 2)
	assert.Equal(t, "Para 2.", segments[1].Text)
}
