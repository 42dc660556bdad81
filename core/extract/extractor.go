// Package extract implements the streaming record extractor.
// It reads a large XML export token by token and yields one Record per
// matched element, buffering only the element currently being extracted:
//  1. Tokens outside matched elements are discarded as they are read
//  2. Cache-tag elements are collected into side-channel lists
//  3. Skip-tag subtrees are dropped without being buffered
package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"reflect"

	"github.com/gaurav-prasanna/pressblocks/core"
	"golang.org/x/net/html/charset"
)

// Options configures an Extractor. Names are qualified, e.g. "wp:comment".
type Options struct {
	ItemTag   string
	CacheTags []string
	SkipTags  []string
}

// Extractor yields records from an XML stream.
type Extractor struct {
	dec      *xml.Decoder
	itemTag  string
	cacheSet map[string]bool
	skipSet  map[string]bool

	// prefixes maps namespace URL to the prefix it was declared with.
	prefixes map[string]string
	cache    map[string][]core.Record
	err      error
}

// New creates an Extractor reading from r.
func New(r io.Reader, opts Options) *Extractor {
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	itemTag := opts.ItemTag
	if itemTag == "" {
		itemTag = "item"
	}

	return &Extractor{
		dec:      dec,
		itemTag:  itemTag,
		cacheSet: toSet(opts.CacheTags),
		skipSet:  toSet(opts.SkipTags),
		prefixes: map[string]string{},
		cache:    map[string][]core.Record{},
	}
}

// Next returns the next record, or io.EOF once the document is exhausted.
// A parse error is returned for malformed XML and repeated on later calls.
func (e *Extractor) Next() (core.Record, error) {
	if e.err != nil {
		return nil, e.err
	}
	rec, err := e.next()
	if err != nil {
		e.err = err
	}
	return rec, err
}

// All returns the records as a sequence. Iteration stops after the first
// error; io.EOF is not reported.
func (e *Extractor) All() iter.Seq2[core.Record, error] {
	return func(yield func(core.Record, error) bool) {
		for {
			rec, err := e.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Cached returns the deduplicated records collected for a cache tag.
func (e *Extractor) Cached(name string) []core.Record {
	return e.cache[name]
}

// CachedTags returns every cache tag that collected at least one record.
func (e *Extractor) CachedTags() map[string][]core.Record {
	out := make(map[string][]core.Record, len(e.cache))
	for k, v := range e.cache {
		out[k] = v
	}
	return out
}

func (e *Extractor) next() (core.Record, error) {
	for {
		tok, err := e.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		e.declare(start.Attr)
		name := e.qualify(start.Name)

		switch {
		case e.skipSet[name]:
			if err := e.dec.Skip(); err != nil {
				return nil, fmt.Errorf("parsing XML: skipping <%s>: %w", name, err)
			}
		case name == e.itemTag:
			el, err := e.buffer(name)
			if err != nil {
				return nil, err
			}
			return BuildRecord(el)
		case e.cacheSet[name]:
			el, err := e.buffer(name)
			if err != nil {
				return nil, err
			}
			rec, err := BuildRecord(el)
			if err != nil {
				return nil, err
			}
			e.remember(name, rec)
		}
	}
}

// buffer reads the rest of the element whose start tag was just consumed.
func (e *Extractor) buffer(name string) (*Element, error) {
	root := &Element{Name: name}
	stack := []*Element{root}

	for {
		tok, err := e.dec.Token()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("parsing XML inside <%s>: %w", name, err)
		}
		top := stack[len(stack)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			e.declare(t.Attr)
			child := e.qualify(t.Name)
			if e.skipSet[child] {
				if err := e.dec.Skip(); err != nil {
					return nil, fmt.Errorf("parsing XML: skipping <%s>: %w", child, err)
				}
				continue
			}
			el := &Element{Name: child}
			top.Children = append(top.Children, el)
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return root, nil
			}
		case xml.CharData:
			if n := len(top.Children); n > 0 {
				if txt, ok := top.Children[n-1].(*Text); ok {
					txt.Data += string(t)
					continue
				}
			}
			top.Children = append(top.Children, &Text{Data: string(t)})
		}
	}
}

func (e *Extractor) remember(name string, rec core.Record) {
	for _, seen := range e.cache[name] {
		if reflect.DeepEqual(seen, rec) {
			return
		}
	}
	e.cache[name] = append(e.cache[name], rec)
}

// declare records xmlns:prefix declarations so names can be re-prefixed.
func (e *Extractor) declare(attrs []xml.Attr) {
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns":
			e.prefixes[a.Value] = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			e.prefixes[a.Value] = ""
		}
	}
}

// qualify turns a resolved name back into prefix:local.
// Undeclared prefixes are left in Space by the decoder and used as is.
func (e *Extractor) qualify(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	prefix, ok := e.prefixes[n.Space]
	if !ok {
		prefix = n.Space
	}
	if prefix == "" {
		return n.Local
	}
	return prefix + ":" + n.Local
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
