package render

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"ising/internal/core"
)

const (
	spinUp   = '.'
	spinDown = 'O'
)

// Frame separators for the two sink kinds.
const (
	SeparatorFormFeed  = "\f"
	SeparatorBlankLine = "\n"
)

// FramePainter renders spin snapshots as text, one character per site.
// The first frame is written bare; every later frame is preceded by the separator.
type FramePainter struct {
	w         *bufio.Writer
	separator string
	buf       []byte
	frames    int
}

// NewFramePainter writes frames to w separated by sep.
func NewFramePainter(w io.Writer, sep string) *FramePainter {
	return &FramePainter{w: bufio.NewWriter(w), separator: sep}
}

// NewFramePainterFor picks the separator from the sink type: terminals get a
// blank line between frames, files and pipes get a form feed.
func NewFramePainterFor(w io.Writer) *FramePainter {
	sep := SeparatorFormFeed
	if IsTerminal(w) {
		sep = SeparatorBlankLine
	}
	return NewFramePainter(w, sep)
}

// Separator reports the string placed between frames.
func (fp *FramePainter) Separator() string { return fp.separator }

// Frames reports how many frames have been written.
func (fp *FramePainter) Frames() int { return fp.frames }

// WriteFrame renders one snapshot and flushes it to the sink.
func (fp *FramePainter) WriteFrame(snap core.Snapshot) error {
	size := snap.Size()
	cells := snap.Cells()
	if len(cells) != size.Area() {
		return errors.Errorf("render: snapshot has %d cells, want %d", len(cells), size.Area())
	}
	fp.buf = fillSpinText(fp.buf[:0], cells, size.W)
	if fp.frames > 0 {
		if _, err := fp.w.WriteString(fp.separator); err != nil {
			return errors.Wrap(err, "render: writing separator")
		}
	}
	if _, err := fp.w.Write(fp.buf); err != nil {
		return errors.Wrap(err, "render: writing frame")
	}
	fp.frames++
	return errors.Wrap(fp.w.Flush(), "render: flushing frame")
}

// fillSpinText appends one row per line, '.' for up spins and 'O' for down.
func fillSpinText(buf []byte, cells []int8, width int) []byte {
	for i, c := range cells {
		if c > 0 {
			buf = append(buf, spinUp)
		} else {
			buf = append(buf, spinDown)
		}
		if (i+1)%width == 0 {
			buf = append(buf, '\n')
		}
	}
	return buf
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
