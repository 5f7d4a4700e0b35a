package dupescan

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

var bold = color.New(color.Bold)
var green = color.New(color.FgGreen)

// Notifier reports scan progress to a writer, normally stderr so that
// the report itself stays clean on stdout. A nil *Notifier is valid
// and reports nothing.
type Notifier struct {
	w io.Writer
}

// NewNotifier returns a notifier writing to w.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

func (n *Notifier) ScanningDirectory(directory string) {
	if n == nil {
		return
	}
	fmt.Fprintf(n.w, "%s scanning directory: %s\n", nowStr(), directory)
}

func (n *Notifier) IndexedFiles(indexed, skipped int) {
	if n == nil {
		return
	}
	fmt.Fprintf(
		n.w,
		"%s indexed %d files (%d skipped)\n",
		nowStr(),
		indexed,
		skipped,
	)
}

func (n *Notifier) CandidateGroups(candidates, uniqueSizes int) {
	if n == nil {
		return
	}
	fmt.Fprintf(
		n.w,
		"%s ignoring %d unique sizes, %d candidate groups remain\n",
		nowStr(),
		uniqueSizes,
		candidates,
	)
}

func (n *Notifier) ProcessingSizeGroup(index, total, members int, size int64) {
	if n == nil {
		return
	}
	bold.Fprintf(
		n.w,
		"%s processing size group %d/%d (%d files @ %s each)\n",
		nowStr(),
		index,
		total,
		members,
		HumanSize(size),
	)
}

func (n *Notifier) DuplicatesFound(groups int) {
	if n == nil {
		return
	}
	green.Fprintf(n.w, "%s found %d duplicate groups\n", nowStr(), groups)
}

func nowStr() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
