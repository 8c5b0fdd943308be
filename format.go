package klogger

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

const (
	// MaxLineLen is the capacity of the buffer a record is rendered into.
	// Longer lines are truncated.
	MaxLineLen = 512
	// MaxTargetLen bounds the rendered target name.
	MaxTargetLen = 64

	separator = ": "
	tsWidth   = 10
)

// Level is the severity of a record. Lower values are more severe.
type Level uint32

const (
	// LevelOff disables logging when used as a threshold.
	LevelOff Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var levelNames = [...]string{"OFF", "ERROR", "WARN", "INFO", "DEBUG", "TRACE"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel converts a level name, in any case, to a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Styles are built once so rendering never allocates. Levels without an
// entry are printed unstyled.
var levelStyles = [...]string{
	LevelError: ansi.Style{}.Bold().ForegroundColor(ansi.ExtendedColor(202)).String(),
	LevelWarn:  ansi.Style{}.ForegroundColor(ansi.ExtendedColor(167)).String(),
}

func (l Level) style() string {
	if int(l) < len(levelStyles) {
		return levelStyles[l]
	}
	return ""
}

// Record is one log entry.
type Record struct {
	Level   Level
	Target  string
	Message string
}

// Formatter renders records as text lines:
//
//	[timestamp " "] [style] target ": " message [reset] "\n"
type Formatter struct {
	// Color wraps Error and Warn lines in terminal styling.
	Color bool
	// CRLF terminates lines with "\r\n" instead of "\n".
	CRLF bool
	// Clock, if set, returns nanoseconds since start and prefixes every
	// line with it.
	Clock func() uint64
}

// Render writes r into out and returns the number of bytes written.
//
// It never writes past len(out) and never allocates. The style reset and
// line terminator are always kept; if the rest of the line does not fit,
// the message is cut at the buffer boundary, backing off to the start of a
// UTF-8 sequence rather than splitting it.
func (f *Formatter) Render(r Record, out []byte) int {
	style := ""
	if f.Color {
		style = r.Level.style()
	}
	eol := "\n"
	if f.CRLF {
		eol = "\r\n"
	}
	reserve := len(eol)
	if style != "" {
		reserve += len(ansi.ResetStyle)
	}
	if reserve > len(out) {
		b := lineBuf{buf: out}
		b.put(eol)
		return b.n
	}

	b := lineBuf{buf: out[:len(out)-reserve]}
	if f.Clock != nil {
		var digits [20]byte
		ts := strconv.AppendUint(digits[:0], f.Clock(), 10)
		for i := len(ts); i < tsWidth; i++ {
			b.put(" ")
		}
		b.putBytes(ts)
		b.put(" ")
	}
	styled := style != "" && b.putWhole(style)

	target := r.Target
	target = target[:cutUTF8(target, MaxTargetLen)]
	b.put(target)
	b.put(separator)
	b.put(r.Message)

	n := b.n
	if styled {
		n += copy(out[n:], ansi.ResetStyle)
	}
	n += copy(out[n:], eol)
	return n
}

// lineBuf is a bounded append buffer. Once a write is cut short every
// later write is dropped, so a truncated line never resumes mid-way.
type lineBuf struct {
	buf  []byte
	n    int
	full bool
}

func (b *lineBuf) put(s string) {
	if b.full {
		return
	}
	room := len(b.buf) - b.n
	if len(s) > room {
		s = s[:cutUTF8(s, room)]
		b.full = true
	}
	b.n += copy(b.buf[b.n:], s)
}

func (b *lineBuf) putBytes(p []byte) {
	if b.full {
		return
	}
	if len(p) > len(b.buf)-b.n {
		p = p[:len(b.buf)-b.n]
		b.full = true
	}
	b.n += copy(b.buf[b.n:], p)
}

// putWhole writes s only if it fits entirely, leaving the buffer usable
// otherwise. Escape sequences must not be split.
func (b *lineBuf) putWhole(s string) bool {
	if b.full || len(s) > len(b.buf)-b.n {
		return false
	}
	b.n += copy(b.buf[b.n:], s)
	return true
}

// cutUTF8 returns the largest length <= n that does not end inside a
// UTF-8 sequence of s. Invalid input is cut at n.
func cutUTF8(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	for i := n; i >= 0 && i > n-utf8.UTFMax; i-- {
		if utf8.RuneStart(s[i]) {
			return i
		}
	}
	return n
}
