package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Session is one finished problem set.
type Session struct {
	ent.Schema
}

func (Session) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (Session) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Unique().
			Comment("UUID of the client session"),
		field.String("user_id").
			Comment("Server-assigned player id"),
		field.String("nickname"),
		field.Int("total").
			Default(0).
			Comment("Problems in the set"),
		field.Int("answered").
			Default(0),
		field.Int("correct").
			Default(0),
		field.Time("started_at"),
		field.Time("finished_at"),
	}
}

func (Session) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("finished_at"),
	}
}
