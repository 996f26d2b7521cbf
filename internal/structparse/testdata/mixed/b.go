package b

type B struct{}
