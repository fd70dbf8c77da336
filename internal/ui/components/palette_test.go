package components_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"dsaboost/internal/ui/components"
)

func TestSuggest(t *testing.T) {
	t.Parallel()
	names := func(cs []components.Command) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name
		}
		return out
	}

	got := names(components.Suggest("timer:p"))
	if len(got) != 1 || got[0] != "timer:pause" {
		t.Fatalf("Suggest(timer:p) = %v", got)
	}
	got = names(components.Suggest("clear"))
	if len(got) != 1 || got[0] != "activity:clear" {
		t.Fatalf("Suggest(clear) = %v", got)
	}
	if got := components.Suggest(""); len(got) != 5 {
		t.Fatalf("empty input gives %d suggestions", len(got))
	}
	got = names(components.Suggest("problems 3"))
	if len(got) != 1 || got[0] != "problems" {
		t.Fatalf("arguments should not affect matching: %v", got)
	}
}

func TestPaletteTabCompletesAndSubmits(t *testing.T) {
	t.Parallel()
	p := components.NewPalette()
	p.Open()
	for _, r := range "vis" {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Visible() {
		t.Fatalf("palette should close on enter")
	}
	msg, ok := cmd().(components.PaletteSubmitMsg)
	if !ok || msg.Input != "visit" {
		t.Fatalf("submitted %#v", msg)
	}
}
