package svgback

import (
	"bytes"
	"encoding/xml"
	"sort"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Bytes serializes the document to SVG. Callers that need the surface to
// reflect every pending scene mutation should check Stage.IsDirty and call
// Stage.Render first.
func (b *Backend) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	writeElement(&buf, b.doc, 0)
	return buf.Bytes()
}

func writeElement(buf *bytes.Buffer, el *Element, depth int) {
	indent(buf, depth)
	buf.WriteByte('<')
	buf.WriteString(el.Tag)
	for _, k := range sortedAttrKeys(el.Attrs) {
		buf.WriteByte(' ')
		buf.WriteString(k)
		buf.WriteString(`="`)
		escape(buf, el.Attrs[k])
		buf.WriteByte('"')
	}
	if len(el.children) == 0 && el.Text == "" {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteByte('>')
	if el.Text != "" {
		escape(buf, el.Text)
	}
	if len(el.children) > 0 {
		buf.WriteByte('\n')
		for _, c := range el.children {
			writeElement(buf, c, depth+1)
		}
		indent(buf, depth)
	}
	buf.WriteString("</")
	buf.WriteString(el.Tag)
	buf.WriteString(">\n")
}

// sortedAttrKeys orders attributes lexically so output is deterministic.
func sortedAttrKeys(attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escape(buf *bytes.Buffer, s string) {
	// xml.EscapeText never fails on a bytes.Buffer.
	_ = xml.EscapeText(buf, []byte(s))
}

func indent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}
