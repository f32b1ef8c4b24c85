package cli

import (
	"strings"
	"testing"
)

func TestStyledTableRender(t *testing.T) {
	table := NewStyledTable("WORKTREE", "STATUS")
	table.plain = true
	table.AddRow("feature-x", "working")
	table.AddRow("fix-login", "waiting")

	out := table.Render()
	for _, want := range []string{"WORKTREE", "STATUS", "feature-x", "working", "fix-login"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
	if table.RowCount() != 2 {
		t.Errorf("RowCount = %d", table.RowCount())
	}
}

func TestStyledTableColumnsGrowToFit(t *testing.T) {
	table := NewStyledTable("A")
	table.plain = true
	table.AddRow("a-much-longer-value")

	out := table.Render()
	lines := strings.Split(out, "\n")
	width := len([]rune(lines[0]))
	for i, line := range lines {
		if got := len([]rune(line)); got != width {
			t.Errorf("line %d width %d != %d:\n%s", i, got, width, out)
		}
	}
}

func TestStyledTableShortRowPadsMissingCells(t *testing.T) {
	table := NewStyledTable("A", "B", "C")
	table.plain = true
	table.AddRow("only-one")

	out := table.Render()
	if !strings.Contains(out, "only-one") {
		t.Errorf("row value missing:\n%s", out)
	}
}
