package internal

type Options struct {
	Name string

	// when set, writes of an equal value are dropped
	Equal func(a, b any) bool
}
