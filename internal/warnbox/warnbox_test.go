package warnbox

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProducesBalancedBox(t *testing.T) {
	out := Render("Community theme warning", []string{"line one", "a longer second line here"})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.True(t, len(lines) >= 4)

	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), "all box lines must share the same rune width")
	}
}

func TestRenderHandlesWideRunes(t *testing.T) {
	out := Render("警告", []string{"注意してください"})
	assert.Contains(t, out, "警告")
	assert.Contains(t, out, "注意してください")
}

func TestConfirmAcceptsYes(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("yes\n"))
	var buf bytes.Buffer
	assert.True(t, Confirm("title", nil, "Proceed?", r, &buf))
}

func TestConfirmRejectsOtherInput(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("no\n"))
	var buf bytes.Buffer
	assert.False(t, Confirm("title", nil, "Proceed?", r, &buf))
}
