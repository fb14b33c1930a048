package ui

import (
	"fmt"
	"sync/atomic"

	"github.com/brogergvhs/noveltomanga/internal/util"
)

// Stats is shared by the chapter workers of one run.
type Stats struct {
	TotalChapters  atomic.Int64
	SyntheticPages atomic.Int64
	NativePages    atomic.Int64
	TotalBytes     atomic.Int64
}

func (s *Stats) Summary() string {
	return fmt.Sprintf("%d chapters, %d rendered pages, %d images, %s",
		s.TotalChapters.Load(), s.SyntheticPages.Load(), s.NativePages.Load(), util.Human(s.TotalBytes.Load()))
}
