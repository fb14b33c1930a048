// Package content models chapter content as an ordered list of text and image
// nodes and splits it into runs of paragraphs separated by images.
package content

import (
	"iter"
	"strings"
)

type NodeKind int

const (
	TextNode NodeKind = iota
	ImageNode
)

// Node is one paragraph or one inline image, in document order.
type Node struct {
	Kind NodeKind
	Text string
	URL  string
}

func Text(s string) Node { return Node{Kind: TextNode, Text: s} }
func Image(u string) Node { return Node{Kind: ImageNode, URL: u} }
func (n Node) IsImage() bool { return n.Kind == ImageNode }

type EventKind int

const (
	RunEvent EventKind = iota
	ImageEvent
)

// Event is either a run of non-empty paragraph lines or a single image.
type Event struct {
	Kind  EventKind
	Lines []string
	Node  Node
}

// EmptyPolicy decides whether a paragraph is too empty to render.
type EmptyPolicy func(string) bool

var (
	// TrimSpacePolicy treats whitespace-only paragraphs as empty.
	TrimSpacePolicy EmptyPolicy = func(s string) bool { return strings.TrimSpace(s) == "" }
	// ExactPolicy only drops zero-length paragraphs.
	ExactPolicy EmptyPolicy = func(s string) bool { return s == "" }
)

type segmentOptions struct {
	empty EmptyPolicy
}

type SegmentOption func(*segmentOptions)

func WithEmptyPolicy(p EmptyPolicy) SegmentOption {
	return func(o *segmentOptions) {
		if p != nil {
			o.empty = p
		}
	}
}

// Segment walks nodes in order and yields runs of consecutive paragraphs,
// flushed at every image and at the end, with each image yielded right after
// the run that precedes it. Empty runs are never yielded.
func Segment(nodes []Node, opts ...SegmentOption) iter.Seq[Event] {
	o := segmentOptions{empty: TrimSpacePolicy}
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(Event) bool) {
		var acc []string

		flush := func() bool {
			if len(acc) == 0 {
				return true
			}
			lines := acc
			acc = nil
			return yield(Event{Kind: RunEvent, Lines: lines})
		}

		for i, n := range nodes {
			last := i == len(nodes)-1

			if n.IsImage() {
				if !flush() {
					return
				}
				if !yield(Event{Kind: ImageEvent, Node: n}) {
					return
				}
				continue
			}

			if !o.empty(n.Text) {
				acc = append(acc, n.Text)
			}
			if last && !flush() {
				return
			}
		}
	}
}
