package template

import "time"

// Template is a reusable text snippet for notes and conducts, grouped by
// category (e.g. "conduta", "exame físico", "plano NF").
type Template struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`
	Content  string `db:"content" json:"content"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
