package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Record holds the schema definition for a stored state document. The
// storage key is the ID.
type Record struct {
	ent.Schema
}

// Fields of the Record.
func (Record) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),

		field.Text("document"),

		// etag changes on every write and guards conditional updates.
		field.String("etag"),

		field.Time("updated_at"),
	}
}

// Edges of the Record.
func (Record) Edges() []ent.Edge {
	return nil
}
