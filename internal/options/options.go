// Package options implements the functional options shared by the encoders and
// the map builder.
//
// Every configurable type T in this module exposes constructors that take
// ...Option[*T]. Options that can reject their argument return an error from
// Apply, so invalid format constants fail at setup rather than mid-stream.
package options

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
}

type optionFunc[T any] func(T) error

func (f optionFunc[T]) apply(target T) error {
	return f(target)
}

// New wraps a function that may reject its target's new setting.
func New[T any](fn func(T) error) Option[T] {
	return optionFunc[T](fn)
}

// NoError wraps a function that always succeeds.
func NoError[T any](fn func(T)) Option[T] {
	return optionFunc[T](func(target T) error {
		fn(target)
		return nil
	})
}

// Apply applies opts to target in order and returns the first error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
