package extjson

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roach88/litedocs/internal/value"
)

// Render returns the text form of v in format f.
//
// Empty documents and arrays render as {} and [] in every layout. The
// result never ends with a newline.
func Render(v value.Value, f Format) string {
	var b strings.Builder
	w := writer{b: &b, json: f.IsJSON(), indent: f.IsIndented(), exact: f.IsExact()}
	w.value(v, "")
	return b.String()
}

// RenderDocument is Render for a document.
func RenderDocument(doc *value.Document, f Format) string {
	if doc == nil {
		return "{}"
	}
	return Render(doc, f)
}

// EscapeString applies JSON string escaping: two-character escapes for
// \b \f \n \r \t " and \, \u00xx for other characters below 0x20, and
// everything else verbatim.
func EscapeString(s string) string {
	var b strings.Builder
	writeEscaped(&b, s)
	return b.String()
}

func writeEscaped(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if r < ' ' {
				fmt.Fprintf(b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
}

type writer struct {
	b      *strings.Builder
	json   bool
	indent bool
	exact  bool
}

func (w *writer) str(s string) {
	w.b.WriteByte('"')
	writeEscaped(w.b, s)
	w.b.WriteByte('"')
}

// marker writes {"key" : "payload"}.
func (w *writer) marker(key, payload string) {
	w.b.WriteByte('{')
	w.str(key)
	w.b.WriteString(" : ")
	w.str(payload)
	w.b.WriteByte('}')
}

// call writes Name(arg) or Name("arg") when quote is set.
func (w *writer) call(name, arg string, quote bool) {
	w.b.WriteString(name)
	w.b.WriteByte('(')
	if quote {
		w.str(arg)
	} else {
		w.b.WriteString(arg)
	}
	w.b.WriteByte(')')
}

func (w *writer) value(v value.Value, pad string) {
	switch t := v.(type) {
	case nil, value.Null:
		w.b.WriteString("null")
	case value.Int32:
		s := strconv.FormatInt(int64(t), 10)
		if w.json {
			w.b.WriteString(s)
		} else {
			w.call("Int", s, false)
		}
	case value.Int64:
		s := strconv.FormatInt(int64(t), 10)
		if w.json {
			w.b.WriteString(s)
		} else {
			w.call("Long", s, false)
		}
	case value.Double:
		f := float64(t)
		s := FormatDouble(f)
		if w.exact {
			s = formatDoubleExact(f)
		}
		switch {
		case !w.json:
			w.call("Double", s, false)
		case math.IsNaN(f) || math.IsInf(f, 0):
			w.marker(markerNumberDouble, s)
		default:
			w.b.WriteString(s)
		}
	case value.Decimal:
		s := FormatDecimal(t.Decimal)
		if w.exact {
			s = withFraction(t.Decimal.String())
		}
		if w.json {
			w.b.WriteString(s)
		} else {
			w.call("Decimal", s, false)
		}
	case value.String:
		w.str(string(t))
	case value.Boolean:
		if t {
			w.b.WriteString("true")
		} else {
			w.b.WriteString("false")
		}
	case value.DateTime:
		if w.json {
			w.str(t.UTC().Format(jsonDateLayout))
		} else {
			w.call("ISODate", t.UTC().Format(friendlyDateLayout), true)
		}
	case value.Binary:
		s := base64.StdEncoding.EncodeToString(t)
		if w.json {
			w.marker(markerBinary, s)
		} else {
			w.call("Binary", s, true)
		}
	case value.ObjectID:
		if w.json {
			w.marker(markerObjectID, t.Hex())
		} else {
			w.call("ObjectId", t.Hex(), true)
		}
	case value.Guid:
		if w.json {
			w.marker(markerGuid, t.String())
		} else {
			w.call("Guid", t.String(), true)
		}
	case value.MinValue:
		if w.json {
			w.marker(markerMinValue, "")
		} else {
			w.b.WriteString("MinValue()")
		}
	case value.MaxValue:
		if w.json {
			w.marker(markerMaxValue, "")
		} else {
			w.b.WriteString("MaxValue()")
		}
	case *value.Document:
		w.document(t, pad)
	case value.Array:
		w.array(t, pad)
	default:
		panic(fmt.Sprintf("extjson: unsupported value type %T", v))
	}
}

func (w *writer) document(d *value.Document, pad string) {
	if d.Len() == 0 {
		w.b.WriteString("{}")
		return
	}
	w.open('{')
	for i, f := range d.Fields() {
		w.separator(i)
		inner := w.itemPad(pad)
		w.str(f.Key)
		w.b.WriteString(" : ")
		w.value(f.Value, inner)
	}
	w.close('}', pad)
}

func (w *writer) array(a value.Array, pad string) {
	if len(a) == 0 {
		w.b.WriteString("[]")
		return
	}
	w.open('[')
	for i, item := range a {
		w.separator(i)
		inner := w.itemPad(pad)
		w.value(item, inner)
	}
	w.close(']', pad)
}

func (w *writer) open(c byte) {
	w.b.WriteByte(c)
	if w.indent {
		w.b.WriteByte('\n')
	}
}

func (w *writer) separator(i int) {
	if i == 0 {
		return
	}
	if w.indent {
		w.b.WriteString(",\n")
	} else {
		w.b.WriteString(", ")
	}
}

// itemPad writes the leading pad of an entry and returns the pad for its
// nested containers.
func (w *writer) itemPad(pad string) string {
	if !w.indent {
		return ""
	}
	inner := pad + "\t"
	w.b.WriteString(inner)
	return inner
}

func (w *writer) close(c byte, pad string) {
	if w.indent {
		w.b.WriteByte('\n')
		w.b.WriteString(pad)
	}
	w.b.WriteByte(c)
}

// Anchor marks where a rendered document ends inside a results text.
type Anchor struct {
	Offset int         // rune offset of the end of the document text
	ID     value.Value // the document's _id, or Null
}

// RenderResults renders each document followed by a newline and records an
// Anchor at the end of each document's text.
func RenderResults(docs []*value.Document, f Format) (string, []Anchor) {
	var b strings.Builder
	anchors := make([]Anchor, 0, len(docs))
	offset := 0
	for _, doc := range docs {
		text := RenderDocument(doc, f)
		b.WriteString(text)
		offset += utf8.RuneCountInString(text)

		id, ok := doc.Get("_id")
		if !ok {
			id = value.Null{}
		}
		anchors = append(anchors, Anchor{Offset: offset, ID: id})

		b.WriteByte('\n')
		offset++
	}
	return b.String(), anchors
}

// DocumentIDAt returns the ID of the first anchor whose offset is at or
// after caret.
func DocumentIDAt(anchors []Anchor, caret int) (value.Value, bool) {
	for _, a := range anchors {
		if a.Offset >= caret {
			return a.ID, true
		}
	}
	return nil, false
}
