package models

type TestOnly struct {
	ID int64
}
