package tracker

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Snapshot holds every readable record of every table.
type Snapshot struct {
	Users          []types.User          `json:"users"`
	Projects       []types.Project       `json:"projects"`
	Memberships    []types.Membership    `json:"memberships"`
	Sprints        []types.Sprint        `json:"sprints"`
	Tasks          []types.Task          `json:"tasks"`
	Retrospectives []types.Retrospective `json:"retrospectives"`
}

// Snapshot reads every table in turn. Malformed records are skipped.
func (t *Tracker) Snapshot() (Snapshot, error) {
	var s Snapshot
	steps := []struct {
		table string
		read  func() error
	}{
		{types.TableUsers, func() (err error) { s.Users, err = t.backend.Users().FindAll(); return }},
		{types.TableProjects, func() (err error) { s.Projects, err = t.backend.Projects().FindAll(); return }},
		{types.TableMemberships, func() (err error) { s.Memberships, err = t.backend.Memberships().All(); return }},
		{types.TableSprints, func() (err error) { s.Sprints, err = t.backend.Sprints().FindAll(); return }},
		{types.TableTasks, func() (err error) { s.Tasks, err = t.backend.Tasks().FindAll(); return }},
		{types.TableRetrospectives, func() (err error) { s.Retrospectives, err = t.backend.Retrospectives().FindAll(); return }},
	}
	for _, step := range steps {
		if err := step.read(); err != nil {
			return Snapshot{}, fmt.Errorf("snapshot: reading %s: %w", step.table, err)
		}
	}
	return s, nil
}

// WriteJSON writes the snapshot as one indented JSON object.
func (s Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteXML writes the snapshot as one wrapper document holding every
// collection in the same layout the xml backend uses for its files:
//
//	<tracker>
//	  <users><user><id>1</id>...</user></users>
//	  ...
//	</tracker>
func (s Snapshot) WriteXML(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "tracker"}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	collections := []struct {
		schema record.Schema
		rows   [][]string
	}{
		{record.Users, encodeAll(record.Users, s.Users)},
		{record.Projects, encodeAll(record.Projects, s.Projects)},
		{record.Memberships, encodeAll(record.Memberships, s.Memberships)},
		{record.Sprints, encodeAll(record.Sprints, s.Sprints)},
		{record.Tasks, encodeAll(record.Tasks, s.Tasks)},
		{record.Retrospectives, encodeAll(record.Retrospectives, s.Retrospectives)},
	}
	for _, c := range collections {
		if err := encodeCollection(enc, c.schema, c.rows); err != nil {
			return fmt.Errorf("writing %s: %w", c.schema.Table(), err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// encoder is satisfied by every record codec, including the membership one.
type encoder[T any] interface {
	Encode(T) []string
}

func encodeAll[T any](c encoder[T], items []T) [][]string {
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = c.Encode(item)
	}
	return rows
}

func encodeCollection(enc *xml.Encoder, s record.Schema, rows [][]string) error {
	names := record.Names(s)
	table := xml.StartElement{Name: xml.Name{Local: s.Table()}}
	if err := enc.EncodeToken(table); err != nil {
		return err
	}
	for _, values := range rows {
		elem := xml.StartElement{Name: xml.Name{Local: s.Element()}}
		if err := enc.EncodeToken(elem); err != nil {
			return err
		}
		for i, name := range names {
			if err := enc.EncodeElement(values[i], xml.StartElement{Name: xml.Name{Local: name}}); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(elem.End()); err != nil {
			return err
		}
	}
	return enc.EncodeToken(table.End())
}
