package extract

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// Trim copies an XML document from r to w, dropping every element whose
// qualified name is in skip together with its subtree. It returns the
// number of elements removed.
//
// Names are matched as written in the document (raw prefixes), which is
// what WXR exports use consistently.
func Trim(r io.Reader, w io.Writer, skip []string) (int, error) {
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel
	skipSet := toSet(skip)
	bw := bufio.NewWriter(w)

	removed := 0
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return removed, fmt.Errorf("parsing XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := rawName(t.Name)
			if skipSet[name] {
				if err := skipRaw(dec); err != nil {
					return removed, fmt.Errorf("parsing XML: skipping <%s>: %w", name, err)
				}
				removed++
				continue
			}
			bw.WriteString("<" + name)
			for _, a := range t.Attr {
				bw.WriteString(" " + rawName(a.Name) + `="` + attrEscaper.Replace(a.Value) + `"`)
			}
			bw.WriteString(">")
		case xml.EndElement:
			bw.WriteString("</" + rawName(t.Name) + ">")
		case xml.CharData:
			bw.WriteString(textEscaper.Replace(string(t)))
		case xml.Comment:
			bw.WriteString("<!--" + string(t) + "-->")
		case xml.ProcInst:
			if t.Target == "xml" {
				// Output is always UTF-8 whatever the input declared.
				bw.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
				continue
			}
			bw.WriteString("<?" + t.Target + " " + string(t.Inst) + "?>")
		case xml.Directive:
			bw.WriteString("<!" + string(t) + ">")
		}
	}

	if err := bw.Flush(); err != nil {
		return removed, fmt.Errorf("writing trimmed XML: %w", err)
	}
	return removed, nil
}

// skipRaw consumes raw tokens up to the end of the current element.
func skipRaw(dec *xml.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.RawToken()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

func rawName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
