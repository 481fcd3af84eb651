package impact

import "github.com/AnatoleLucet/impact/internal"

type Option func(*internal.Options)

// Name labels a node in logs, hooks and metrics.
func Name(name string) Option {
	return func(o *internal.Options) {
		o.Name = name
	}
}

// Equal makes a signal drop writes for which eq reports the new value equal to the current one.
// Derived values ignore it.
func Equal[T any](eq func(a, b T) bool) Option {
	return func(o *internal.Options) {
		o.Equal = func(a, b any) bool {
			return eq(as[T](a), as[T](b))
		}
	}
}

// SkipEqual is Equal with ==.
func SkipEqual[T comparable]() Option {
	return Equal(func(a, b T) bool { return a == b })
}

func buildOptions(opts []Option) internal.Options {
	var o internal.Options
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
