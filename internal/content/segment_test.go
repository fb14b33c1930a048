package content

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func collect(nodes []Node, opts ...SegmentOption) []Event {
	return slices.Collect(Segment(nodes, opts...))
}

func TestSegmentInterleavesRunsAndImages(t *testing.T) {
	nodes := []Node{
		Text("Hello"),
		Text("world"),
		Image("http://x/img.png"),
		Text("Bye"),
	}

	got := collect(nodes)
	want := []Event{
		{Kind: RunEvent, Lines: []string{"Hello", "world"}},
		{Kind: ImageEvent, Node: Image("http://x/img.png")},
		{Kind: RunEvent, Lines: []string{"Bye"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	if got := collect(nil); len(got) != 0 {
		t.Fatalf("expected no events, got %+v", got)
	}
}

func TestSegmentNeverEmitsEmptyRuns(t *testing.T) {
	nodes := []Node{
		Image("a.png"),
		Text(""),
		Text("   "),
		Image("b.png"),
		Image("c.png"),
		Text(""),
	}

	for _, ev := range collect(nodes) {
		if ev.Kind == RunEvent {
			t.Fatalf("unexpected run %+v", ev)
		}
	}
	if n := len(collect(nodes)); n != 3 {
		t.Fatalf("expected 3 image events, got %d", n)
	}
}

func TestSegmentKeepsLastParagraph(t *testing.T) {
	got := collect([]Node{Text("only")})
	if len(got) != 1 || !reflect.DeepEqual(got[0].Lines, []string{"only"}) {
		t.Fatalf("last paragraph lost: %+v", got)
	}

	got = collect([]Node{Text("a"), Image("i.png")})
	if len(got) != 2 || got[0].Kind != RunEvent || got[1].Kind != ImageEvent {
		t.Fatalf("unexpected events for trailing image: %+v", got)
	}
}

func TestSegmentPreservesOrder(t *testing.T) {
	nodes := []Node{
		Text("1"), Text(""), Text("2"), Image("i1"), Image("i2"),
		Text(" "), Text("3"), Image("i3"), Text("4"), Text("5"),
	}

	var flat []string
	for ev := range Segment(nodes) {
		if ev.Kind == ImageEvent {
			flat = append(flat, ev.Node.URL)
			continue
		}
		flat = append(flat, ev.Lines...)
	}

	var want []string
	for _, n := range nodes {
		switch {
		case n.IsImage():
			want = append(want, n.URL)
		case strings.TrimSpace(n.Text) != "":
			want = append(want, n.Text)
		}
	}

	if !reflect.DeepEqual(flat, want) {
		t.Fatalf("order mismatch:\n got %v\nwant %v", flat, want)
	}
}

func TestSegmentExactPolicyKeepsWhitespaceLines(t *testing.T) {
	nodes := []Node{Text("a"), Text("  "), Text(""), Text("b")}

	got := collect(nodes, WithEmptyPolicy(ExactPolicy))
	if len(got) != 1 || !reflect.DeepEqual(got[0].Lines, []string{"a", "  ", "b"}) {
		t.Fatalf("unexpected events %+v", got)
	}

	got = collect(nodes)
	if !reflect.DeepEqual(got[0].Lines, []string{"a", "b"}) {
		t.Fatalf("default policy should drop whitespace-only lines: %+v", got)
	}
}

func TestSegmentStopsWhenConsumerStops(t *testing.T) {
	nodes := []Node{Text("a"), Image("1"), Text("b"), Image("2")}

	n := 0
	for range Segment(nodes) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("expected to stop after 2 events, got %d", n)
	}
}

func TestFromSelection(t *testing.T) {
	html := `<html><body>
	<div class="epcontent">
		<p>First   line</p>
		<p></p>
		<p>Cafe&#769; au lait</p>
		<img src="/img/1.png">
		<img data-src="https://cdn.example.com/2.webp">
		<img src="data:image/png;base64,AAAA">
		<p>Last</p>
	</div>
	<p>outside</p>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := FromSelection(doc.Find("div.epcontent"), "https://novel.example.com/c/1")
	want := []Node{
		Text("First line"),
		Text(""),
		Text("Café au lait"),
		Image("https://novel.example.com/img/1.png"),
		Image("https://cdn.example.com/2.webp"),
		Text("Last"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v\nwant %#v", got, want)
	}
}

func TestFromHTMLDropsScriptsAndStyles(t *testing.T) {
	html := `<div class="epcontent">
		<style>p { color: red }</style>
		<p>Hello <script>window.ads.push({})</script>world</p>
		<p onclick="x()">Second <b>bold</b> line</p>
		<img src="/art/1.png" onerror="steal()">
		<iframe src="https://ads.example.com/frame"></iframe>
	</div>`

	nodes, err := FromHTML(html, "https://novel.example.com/ch-1/")
	if err != nil {
		t.Fatalf("from html: %v", err)
	}

	want := []Node{
		Text("Hello world"),
		Text("Second bold line"),
		Image("https://novel.example.com/art/1.png"),
	}
	if len(nodes) != len(want) {
		t.Fatalf("got %d nodes: %+v", len(nodes), nodes)
	}
	for i := range want {
		if nodes[i] != want[i] {
			t.Fatalf("node %d: got %+v, want %+v", i, nodes[i], want[i])
		}
	}
}
