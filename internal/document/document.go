// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package document wraps the underlying PDF libraries behind the accessor
// contract the engine consumes: page count, page dimensions, and three
// independent text extraction methods per page. The wrapped readers are not
// guaranteed to support concurrent reads, so every entry point serializes on
// a per-document mutex.
package document

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"tagtrace/internal/schematic"
)

// AccessError wraps a failure of the underlying PDF libraries. Access errors
// are propagated, never swallowed: a broken document aborts the whole call.
type AccessError struct {
	Op   string
	Page int
	Err  error
}

func (e *AccessError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("document access failed: %s (page %d): %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("document access failed: %s: %v", e.Op, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// Document is an open technical-drawing PDF. One engine instance owns one
// Document; Close releases the file handle and invalidates the instance.
type Document struct {
	path string

	mu     sync.Mutex
	file   *os.File
	reader *pdf.Reader
	ctx    *model.Context
	dims   []types.Dim
}

// Open validates and opens a PDF document for position resolution.
func Open(path string) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.ValidateFile(path, conf); err != nil {
		return nil, &AccessError{Op: "validate", Err: err}
	}

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, &AccessError{Op: "read context", Err: err}
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, &AccessError{Op: "page dimensions", Err: err}
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &AccessError{Op: "open", Err: err}
	}

	return &Document{
		path:   path,
		file:   file,
		reader: reader,
		ctx:    ctx,
		dims:   dims,
	}, nil
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Path returns the filesystem path the document was opened from. It doubles
// as the document identity for classification caching.
func (d *Document) Path() string { return d.path }

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctx.PageCount
}

// PageDimensions returns the width and height of a 1-based page in document
// units.
func (d *Document) PageDimensions(page int) (float64, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if page < 1 || page > len(d.dims) {
		return 0, 0, &AccessError{Op: "page dimensions", Page: page, Err: fmt.Errorf("page out of range (1..%d)", len(d.dims))}
	}
	dim := d.dims[page-1]
	return dim.Width, dim.Height, nil
}

// ExtractSpans returns fine-grained token items with tight boxes for a
// 1-based page. Tokens are rebuilt from the raw glyph runs by splitting on
// horizontal gaps wider than a fraction of the font size.
func (d *Document) ExtractSpans(page int) ([]schematic.RawTextItem, error) {
	rows, err := d.pageRows(page)
	if err != nil {
		return nil, err
	}

	var items []schematic.RawTextItem
	for _, row := range rows {
		items = append(items, groupRowTokens(row, page)...)
	}
	return items, nil
}

// ExtractBlocks returns one line-level item per text row for a 1-based page.
// Coarser than spans, but immune to the span-splitting artifacts the
// underlying library produces on kerned labels.
func (d *Document) ExtractBlocks(page int) ([]schematic.RawTextItem, error) {
	rows, err := d.pageRows(page)
	if err != nil {
		return nil, err
	}

	var items []schematic.RawTextItem
	for _, row := range rows {
		if item, ok := joinRow(row, page); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// ExtractRaw returns the page's plain text as a single item with a page-sized
// box. Last-resort fallback for pages where both structured methods come back
// empty; position fidelity is deliberately coarse.
func (d *Document) ExtractRaw(page int) ([]schematic.RawTextItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if page < 1 || page > d.ctx.PageCount {
		return nil, &AccessError{Op: "extract raw", Page: page, Err: fmt.Errorf("page out of range (1..%d)", d.ctx.PageCount)}
	}

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return nil, &AccessError{Op: "extract raw", Page: page, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var w, h float64
	if page <= len(d.dims) {
		w, h = d.dims[page-1].Width, d.dims[page-1].Height
	}

	return []schematic.RawTextItem{{
		Text:   text,
		BBox:   schematic.Rect{X0: 0, Y0: 0, X1: w, Y1: h},
		Page:   page,
		Method: schematic.MethodRaw,
	}}, nil
}

// pageRows reads and X-sorts the glyph rows of a page under the handle mutex.
func (d *Document) pageRows(page int) ([][]pdf.Text, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if page < 1 || page > d.ctx.PageCount {
		return nil, &AccessError{Op: "extract", Page: page, Err: fmt.Errorf("page out of range (1..%d)", d.ctx.PageCount)}
	}

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, &AccessError{Op: "extract rows", Page: page, Err: err}
	}

	var out [][]pdf.Text
	for _, row := range rows {
		if row == nil || len(row.Content) == 0 {
			continue
		}
		content := make([]pdf.Text, len(row.Content))
		copy(content, row.Content)
		sort.Slice(content, func(i, j int) bool {
			return content[i].X < content[j].X
		})
		out = append(out, content)
	}
	return out, nil
}

const defaultFontSize = 12.0

// gapThreshold returns the horizontal gap beyond which two adjacent glyph
// runs belong to separate tokens.
func gapThreshold(fontSize float64) float64 {
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	return fontSize * 0.2
}

// groupRowTokens splits one X-sorted glyph row into token items.
func groupRowTokens(row []pdf.Text, page int) []schematic.RawTextItem {
	var items []schematic.RawTextItem

	var text strings.Builder
	var box schematic.Rect
	flush := func() {
		s := strings.TrimSpace(text.String())
		if s != "" {
			items = append(items, schematic.RawTextItem{
				Text:   s,
				BBox:   box,
				Page:   page,
				Method: schematic.MethodSpan,
			})
		}
		text.Reset()
	}

	for i, glyph := range row {
		gb := glyphBox(glyph)
		if text.Len() == 0 {
			box = gb
		} else {
			box = box.Union(gb)
		}
		text.WriteString(glyph.S)

		if i == len(row)-1 {
			flush()
			break
		}
		next := row[i+1]
		gap := next.X - (glyph.X + glyph.W)
		if gap > gapThreshold(glyph.FontSize) {
			flush()
		}
	}
	return items
}

// joinRow collapses one X-sorted glyph row into a single line item, inserting
// spaces at token boundaries.
func joinRow(row []pdf.Text, page int) (schematic.RawTextItem, bool) {
	var text strings.Builder
	var box schematic.Rect

	for i, glyph := range row {
		gb := glyphBox(glyph)
		if i == 0 {
			box = gb
		} else {
			box = box.Union(gb)
		}
		text.WriteString(glyph.S)

		if i < len(row)-1 {
			next := row[i+1]
			gap := next.X - (glyph.X + glyph.W)
			if gap > gapThreshold(glyph.FontSize) {
				text.WriteString(" ")
			}
		}
	}

	s := strings.TrimSpace(text.String())
	if s == "" {
		return schematic.RawTextItem{}, false
	}
	return schematic.RawTextItem{
		Text:   s,
		BBox:   box,
		Page:   page,
		Method: schematic.MethodBlock,
	}, true
}

// glyphBox derives a bounding box from a positioned glyph run. The library
// reports baseline X/Y and advance width; the font size approximates height.
func glyphBox(t pdf.Text) schematic.Rect {
	h := t.FontSize
	if h <= 0 {
		h = defaultFontSize
	}
	return schematic.Rect{X0: t.X, Y0: t.Y, X1: t.X + t.W, Y1: t.Y + h}
}
