package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MissedProblem is a problem answered incorrectly during a session,
// stored in its canonical JSON form.
type MissedProblem struct {
	ent.Schema
}

func (MissedProblem) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty(),
		field.Int("position").
			Comment("Order in which the problem was missed"),
		field.Int("problem_id"),
		field.String("category"),
		field.String("title"),
		field.Text("payload").
			Comment("Canonical problem JSON"),
	}
}

func (MissedProblem) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "position"),
	}
}
