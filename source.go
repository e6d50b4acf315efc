package dali

import (
	"strings"
	"unicode/utf8"
)

// Span represents a half-open byte interval [StartByte, EndByte) in the
// original source text. Offsets are counted in bytes from the start of the
// UTF-8 source. EndByte is exclusive. Spans are used only for diagnostics,
// never for control flow.
type Span struct {
	StartByte int // inclusive
	EndByte   int // exclusive
}

// SourceBuffer owns an immutable source string and answers line/column
// queries over byte positions. Lines and columns are 1-based. A position
// sitting exactly on a '\n' belongs to the end of the preceding line.
// All queries are pure.
type SourceBuffer struct {
	src string
}

func NewSourceBuffer(src string) *SourceBuffer { return &SourceBuffer{src: src} }

// Text returns the underlying source.
func (b *SourceBuffer) Text() string { return b.src }

func (b *SourceBuffer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.src) {
		return len(b.src)
	}
	return pos
}

// LineOf returns the 1-based line number containing pos.
func (b *SourceBuffer) LineOf(pos int) int {
	pos = b.clamp(pos)
	return 1 + strings.Count(b.src[:pos], "\n")
}

// ColumnsOf returns the inclusive 1-based column range covered by span on
// its starting line. Columns count runes, not bytes, so a multi-byte
// character occupies one column. An empty span reports a single-column
// range.
func (b *SourceBuffer) ColumnsOf(span Span) (int, int) {
	start := b.clamp(span.StartByte)
	end := b.clamp(span.EndByte)
	ls := b.lineStart(start)
	lo := utf8.RuneCountInString(b.src[ls:start]) + 1
	hi := lo
	if end > start {
		last := end - 1
		if b.LineOf(last) == b.LineOf(start) {
			hi = utf8.RuneCountInString(b.src[ls:last]) + 1
		} else {
			// Multi-line span: report through the end of the first line.
			hi = utf8.RuneCountInString(b.src[ls:b.lineEnd(start)])
			if hi < lo {
				hi = lo
			}
		}
	}
	return lo, hi
}

// ExtractLine returns the full text of the line(s) covered by span, scanning
// backward from the span start and forward from the span end to the nearest
// newlines (or the buffer boundaries). The trailing newline is not included.
func (b *SourceBuffer) ExtractLine(span Span) string {
	start := b.clamp(span.StartByte)
	end := b.clamp(span.EndByte)
	if end < start {
		end = start
	}
	return b.src[b.lineStart(start):b.lineEnd(end)]
}

// lineStart scans backward from pos to the byte after the preceding newline.
func (b *SourceBuffer) lineStart(pos int) int {
	pos = b.clamp(pos)
	i := strings.LastIndexByte(b.src[:pos], '\n')
	return i + 1
}

// lineEnd scans forward from pos to the next newline (exclusive) or the end
// of the buffer. A pos sitting on '\n' ends its preceding line there.
func (b *SourceBuffer) lineEnd(pos int) int {
	pos = b.clamp(pos)
	i := strings.IndexByte(b.src[pos:], '\n')
	if i < 0 {
		return len(b.src)
	}
	return pos + i
}
