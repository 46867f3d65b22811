package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 10, "░░░░░░░░░░   0%"},
		{1, 2, 10, "█████░░░░░  50%"},
		{3, 3, 4, "█████ 100%"}, // width clamps to 5
		{5, 2, 6, "██████ 250%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProgressBar(tt.done, tt.total, tt.width))
	}
}

func TestThemes(t *testing.T) {
	t.Cleanup(func() { SetTheme("classic") })

	SetTheme("mono")
	assert.Equal(t, "[x]", Current().BoxChecked)

	SetTheme("NEON")
	assert.Equal(t, "◼", Current().BoxChecked)

	SetTheme("whatever")
	assert.Equal(t, "☑", Current().BoxChecked)
}

func TestPanelAndMessages(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	var buf bytes.Buffer
	Panel(&buf, []string{"Todos", "one"})
	out := buf.String()
	assert.Contains(t, out, "Todos")
	assert.Contains(t, out, "one")
	assert.True(t, strings.HasPrefix(out, "+"), "ascii border expected, got %q", out)

	buf.Reset()
	OK(&buf, "added")
	assert.Equal(t, "x added\n", buf.String())

	buf.Reset()
	Fail(&buf, "boom")
	assert.Equal(t, "✖ boom\n", buf.String())
}
