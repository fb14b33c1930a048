// Package providers defines where chapter content comes from.
package providers

import (
	"context"

	"github.com/brogergvhs/noveltomanga/internal/chapters"
	"github.com/brogergvhs/noveltomanga/internal/content"
)

// Source lists a novel's chapters and extracts one chapter's content.
type Source interface {
	Chapters(ctx context.Context, novelURL string) ([]chapters.Chapter, error)
	Chapter(ctx context.Context, chapterURL string) (chapters.Chapter, []content.Node, error)
}
