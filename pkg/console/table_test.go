package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"NAME", "EVENTS"},
		[][]string{
			{"lint", "push"},
			{"release-pipeline", "push, workflow_dispatch"},
		},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "lint")
	// Short cells are padded so columns align.
	assert.Contains(t, lines[1], "lint              push")
}

func TestRenderTableEmptyRows(t *testing.T) {
	out := RenderTable([]string{"A"}, nil)
	assert.Contains(t, out, "A")
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 1)
}

func TestIndent(t *testing.T) {
	out := Indent("one\n\ntwo\n", "  | ")
	assert.Equal(t, "  | one\n\n  | two", out)
}
