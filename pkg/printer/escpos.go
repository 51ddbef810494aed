package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS control bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

type Align byte

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Character sizes for GS !
const (
	FontNormal byte = 0x00
	FontTall   byte = 0x01
	FontWide   byte = 0x10
	FontDouble byte = 0x11
)

// Paper widths in characters
const (
	Width58mm = 32
	Width80mm = 48
)

// Document builds an ESC/POS byte stream. Lines longer than the paper
// width are truncated so columns never wrap.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a document for a paper of charWidth characters
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = Width58mm
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

// Width returns the print width in characters
func (d *Document) Width() int {
	return d.width
}

// Init sends ESC @
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) SetAlign(a Align) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(a)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	var b byte
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes one line
func (d *Document) Text(s string) *Document {
	d.line(truncate(s, d.width))
	return d
}

func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width rule of char
func (d *Document) Separator(char byte) *Document {
	d.line(strings.Repeat(string(char), d.width))
	return d
}

// KeyValue prints key on the left and value flush right. The key is
// shortened when both do not fit.
func (d *Document) KeyValue(key, value string) *Document {
	value = truncate(value, d.width)
	room := d.width - len(value) - 1
	if room < 0 {
		room = 0
	}
	key = truncate(key, room)
	d.line(key + strings.Repeat(" ", d.width-len(key)-len(value)) + value)
	return d
}

// Cut sends a full cut
func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated stream
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func (d *Document) line(s string) {
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "~"
}
