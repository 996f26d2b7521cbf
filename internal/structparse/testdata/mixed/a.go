package a

type A struct{}
