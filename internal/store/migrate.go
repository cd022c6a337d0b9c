package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/coderush/ent/schema"
)

// Table names of the ent schemas in ent/schema.
const (
	sessionsTable = "sessions"
	missedTable   = "missed_problems"
)

// tables describes the database from the ent schemas.
func tables() ([]*schema.Table, error) {
	sessions, err := tableOf(sessionsTable, entschema.Session{})
	if err != nil {
		return nil, err
	}
	missed, err := tableOf(missedTable, entschema.MissedProblem{})
	if err != nil {
		return nil, err
	}
	return []*schema.Table{sessions, missed}, nil
}

// tableOf turns a schema's fields and indexes, mixins first, into a
// migration table with an auto-increment id.
func tableOf(name string, s ent.Interface) (*schema.Table, error) {
	id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	t := &schema.Table{
		Name:       name,
		Columns:    []*schema.Column{id},
		PrimaryKey: []*schema.Column{id},
	}

	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	columns := map[string]*schema.Column{id.Name: id}
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		c := &schema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Size:     d.Size,
			Unique:   d.Unique,
			Nullable: d.Optional || d.Nillable,
		}
		t.Columns = append(t.Columns, c)
		columns[c.Name] = c
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		ix := &schema.Index{
			Name:   strings.ToLower(name + "_" + strings.Join(d.Fields, "_")),
			Unique: d.Unique,
		}
		for _, f := range d.Fields {
			c, ok := columns[f]
			if !ok {
				return nil, fmt.Errorf("%s: index on unknown column %q", name, f)
			}
			ix.Columns = append(ix.Columns, c)
		}
		t.Indexes = append(t.Indexes, ix)
	}
	return t, nil
}

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv dialect.Driver) error {
	ts, err := tables()
	if err != nil {
		return err
	}
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, ts...)
}
