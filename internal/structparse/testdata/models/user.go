package models

import (
	"time"

	dec "github.com/shopspring/decimal"
)

type Base struct {
	CreatedAt time.Time
}

// User 用户
type User struct {
	Base
	ID        int64
	Name      string `json:"name" autofrom:"default=\"anonymous\""`
	Balance   dec.Decimal
	Tags      []string
	Manager   *User
	A, B      int
	UpdatedAt *time.Time
}

type Status int

type Page[T any] struct {
	Items []T
	Total int
}
