package model

import (
	"strings"
	"time"
)

type Candidate struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Specialty string    `db:"specialty" json:"specialty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (c Candidate) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
