package relationship

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Edge is one directed, typed relationship between two entities.
// At most one edge of a given relation exists between an ordered pair;
// inserts of the identical edge are idempotent.
type Edge struct {
	bun.BaseModel `bun:"table:catalog.entity_relationship,alias:er"`

	FromID    uuid.UUID `bun:"from_id,pk,type:uuid" json:"fromId"`
	FromType  string    `bun:"from_type,notnull" json:"fromType"`
	ToID      uuid.UUID `bun:"to_id,pk,type:uuid" json:"toId"`
	ToType    string    `bun:"to_type,notnull" json:"toType"`
	Relation  Relation  `bun:"relation,pk" json:"relation"`
	CreatedAt time.Time `bun:"created_at,notnull,default:now()" json:"createdAt"`
}
