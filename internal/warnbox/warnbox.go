// Package warnbox renders the unicode-width-aware boxed warning shown
// before installing or updating a community-sourced theme.
package warnbox

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const padding = 2

// Render draws a box-drawn warning around lines, aligning double-wide
// (CJK/emoji) glyphs correctly using go-runewidth rather than byte or rune
// counts.
func Render(title string, lines []string) string {
	all := append([]string{title}, lines...)
	maxWidth := 0
	for _, l := range all {
		if w := runewidth.StringWidth(l); w > maxWidth {
			maxWidth = w
		}
	}
	innerWidth := maxWidth + padding*2

	var b strings.Builder
	b.WriteString("╔" + strings.Repeat("═", innerWidth) + "╗\n")
	writeLine(&b, title, innerWidth)
	b.WriteString("╠" + strings.Repeat("═", innerWidth) + "╣\n")
	for _, l := range lines {
		writeLine(&b, l, innerWidth)
	}
	b.WriteString("╚" + strings.Repeat("═", innerWidth) + "╝\n")
	return b.String()
}

func writeLine(b *strings.Builder, line string, innerWidth int) {
	w := runewidth.StringWidth(line)
	left := padding
	right := innerWidth - w - padding
	if right < 0 {
		right = 0
	}
	fmt.Fprintf(b, "║%s%s%s║\n", strings.Repeat(" ", left), line, strings.Repeat(" ", right))
}

// Confirm prints the box and reads a y/yes confirmation from r, returning
// false on refusal or EOF.
func Confirm(title string, lines []string, prompt string, r *bufio.Reader, w interface{ Write([]byte) (int, error) }) bool {
	fmt.Fprint(w, Render(title, lines))
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	answer, err := r.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
