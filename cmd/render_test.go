package cmd

import (
	"testing"

	"github.com/brogergvhs/noveltomanga/internal/content"
)

func TestParagraphs(t *testing.T) {
	got := paragraphs("First line\r\ncontinues here.\r\n\r\n\n  Second.  \n\n")
	want := []content.Node{
		content.Text("First line continues here."),
		content.Text("Second."),
	}

	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paragraph %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
