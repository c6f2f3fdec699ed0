package flatfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// xmlMedium stores one root element per table holding an ordered list of
// record elements, each with one child element per field:
//
//	<users>
//	  <user><id>1</id><name>Ada</name>...</user>
//	</users>
type xmlMedium struct{}

type xmlDocument struct {
	XMLName xml.Name
	Records []xmlRecord `xml:",any"`
}

type xmlRecord struct {
	XMLName xml.Name
	Fields  []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func (xmlMedium) ext() string { return ".xml" }

// read decodes the document one record element at a time. A record that
// fails to parse becomes an error row and decoding resumes at the next
// record start tag, so one damaged element does not hide its neighbours.
func (xmlMedium) read(r io.Reader, s record.Schema) ([]row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrStorageIO, err)
	}
	d := xml.NewDecoder(bytes.NewReader(data))
	root, err := rootElement(d)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)
	}
	if root.Name.Local != s.Table() {
		return nil, fmt.Errorf("%w: root element <%s>, want <%s>",
			types.ErrMalformedRecord, root.Name.Local, s.Table())
	}

	var rows []row
	base := 0 // offset of d's input within data
	resync := func() bool {
		next := nextStartTag(data, base+int(d.InputOffset()), s.Element())
		if next < 0 {
			return false
		}
		open := "<" + s.Table() + ">"
		d = xml.NewDecoder(io.MultiReader(strings.NewReader(open), bytes.NewReader(data[next:])))
		if _, err := d.Token(); err != nil {
			return false
		}
		base = next - len(open)
		return true
	}
	fail := func(err error) bool {
		rows = append(rows, row{pos: len(rows) + 1, err: fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)})
		return resync()
	}

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			if !fail(err) {
				return rows, nil
			}
			continue
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return rows, nil
		case xml.StartElement:
			if t.Name.Local != s.Element() {
				rows = append(rows, row{pos: len(rows) + 1, err: fmt.Errorf("%w: element <%s>, want <%s>",
					types.ErrMalformedRecord, t.Name.Local, s.Element())})
				if err := d.Skip(); err != nil && !resync() {
					return rows, nil
				}
				continue
			}
			var rec xmlRecord
			if err := d.DecodeElement(&rec, &t); err != nil {
				if !fail(err) {
					return rows, nil
				}
				continue
			}
			byName := make(map[string]string, len(rec.Fields))
			for _, f := range rec.Fields {
				byName[f.XMLName.Local] = f.Value
			}
			rows = append(rows, row{pos: len(rows) + 1, values: orderValues(s, byName)})
		}
	}
}

// rootElement returns the document's first start element.
func rootElement(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// nextStartTag returns the offset of the first <name> or <name ...> tag at
// or after from, or -1.
func nextStartTag(data []byte, from int, name string) int {
	tag := []byte("<" + name)
	for from < len(data) {
		i := bytes.Index(data[from:], tag)
		if i < 0 {
			return -1
		}
		at := from + i
		end := at + len(tag)
		if end < len(data) {
			switch data[end] {
			case '>', '/', ' ', '\t', '\n', '\r':
				return at
			}
		}
		from = end
	}
	return -1
}

func (xmlMedium) write(w io.Writer, s record.Schema, rows [][]string) error {
	names := record.Names(s)
	doc := xmlDocument{
		XMLName: xml.Name{Local: s.Table()},
		Records: make([]xmlRecord, len(rows)),
	}
	for i, values := range rows {
		rec := xmlRecord{
			XMLName: xml.Name{Local: s.Element()},
			Fields:  make([]xmlField, len(names)),
		}
		for j, name := range names {
			rec.Fields[j] = xmlField{XMLName: xml.Name{Local: name}, Value: values[j]}
		}
		doc.Records[i] = rec
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
