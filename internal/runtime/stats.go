package runtime

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats counts work done by an interpreter since it was created.
type Stats struct {
	Statements int64 // statements executed
	Calls      int64 // function, method, class and native calls
	Frames     int64 // frames created for blocks, calls and 'super'
	MaxDepth   int   // deepest call nesting reached
}

func (s Stats) String() string {
	return fmt.Sprintf("statements=%s calls=%s frames=%s max-depth=%s",
		humanize.Comma(s.Statements),
		humanize.Comma(s.Calls),
		humanize.Comma(s.Frames),
		humanize.Comma(int64(s.MaxDepth)))
}
