package impact

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/AnatoleLucet/impact/internal"
)

type FieldKind int

const (
	// FieldValue is a reactive value, any type with Read and Peek methods such as ReadOnly.
	FieldValue FieldKind = iota
	// FieldCallable is a plain function.
	FieldCallable
)

func (k FieldKind) String() string {
	if k == FieldCallable {
		return "callable"
	}

	return "value"
}

type Field struct {
	Name string
	Kind FieldKind
	Type reflect.Type
}

// Store is a store definition. T is the struct type the factory returns, its schema is
// resolved once by DefineStore.
type Store[P, T any] struct {
	name    string
	schema  []Field
	factory func(props ReadOnly[P]) T

	// holds the instance provided to owners below its scope
	provided *internal.Context
}

// DefineStore validates T and returns the store definition.
// Every field of T must be exported, and either a ReadOnly[V] interface or a func.
// DefineStore panics with ErrInvalidSchema otherwise.
func DefineStore[P, T any](name string, factory func(props ReadOnly[P]) T) *Store[P, T] {
	schema, err := schemaOf(reflect.TypeFor[T]())
	if err != nil {
		panic(fmt.Errorf("store %q: %w", name, err))
	}

	return &Store[P, T]{
		name:     name,
		schema:   schema,
		factory:  factory,
		provided: internal.GetRuntime().NewContext(nil),
	}
}

func (s *Store[P, T]) Name() string { return s.name }

func (s *Store[P, T]) Schema() []Field { return slices.Clone(s.schema) }

// Mount runs the factory in a new scope nested in the current owner.
// The props are exposed to the factory as a signal, updated by SetProps.
// The instance is provided to everything later run in its scope.
func (s *Store[P, T]) Mount(props P) (*Instance[P, T], error) {
	inst := &Instance[P, T]{
		store: s,
		scope: NewScope(),
	}

	err := inst.scope.Run(func() error {
		return s.build(inst, props)
	})
	if err != nil {
		inst.scope.Close()
		logger().Error(err, "store mount failed", "store", s.name)
		return nil, err
	}

	s.provided.SetOn(inst.scope.owner, inst)
	logger().V(1).Info("store mounted", "store", s.name, "scope", inst.scope.ID())

	return inst, nil
}

func (s *Store[P, T]) build(inst *Instance[P, T], props P) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = initError(s.name, rec)
		}
	}()

	inst.props = NewSignal(props, Name(s.name+".props"))
	inst.value = Untrack(func() T {
		return s.factory(inst.props)
	})

	return nil
}

func initError(name string, rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("%w %q: %w", ErrStoreInit, name, err)
	}

	return fmt.Errorf("%w %q: %v", ErrStoreInit, name, rec)
}

// Use returns the closest instance mounted above the current owner.
func (s *Store[P, T]) Use() (T, error) {
	v, ok := s.provided.Lookup()
	if !ok || v == nil {
		var zero T
		return zero, fmt.Errorf("%w %q", ErrNoProvider, s.name)
	}

	return v.(*Instance[P, T]).value, nil
}

// MustUse is Use panicking on error.
func (s *Store[P, T]) MustUse() T {
	v, err := s.Use()
	if err != nil {
		panic(err)
	}

	return v
}

// Instance is a mounted store.
type Instance[P, T any] struct {
	store *Store[P, T]
	scope *Scope
	props *Signal[P]
	value T
}

func (i *Instance[P, T]) Value() T { return i.value }

func (i *Instance[P, T]) Props() P { return i.props.Peek() }

// SetProps updates the props signal the factory received.
func (i *Instance[P, T]) SetProps(props P) {
	i.props.Write(props)
}

func (i *Instance[P, T]) Scope() *Scope { return i.scope }

// Unmount closes the instance's scope. Unmounting twice is a no-op.
func (i *Instance[P, T]) Unmount() {
	if i.scope.Closed() {
		return
	}

	i.scope.Close()
	logger().V(1).Info("store unmounted", "store", i.store.name, "scope", i.scope.ID())
}

// Snapshot returns the current value of every reactive field, without tracking.
func (i *Instance[P, T]) Snapshot() map[string]any {
	snap := make(map[string]any, len(i.store.schema))

	v := reflect.ValueOf(i.value)
	for idx, f := range i.store.schema {
		if f.Kind != FieldValue {
			continue
		}

		fv := v.Field(idx)
		switch fv.Kind() {
		case reflect.Interface, reflect.Pointer:
			if fv.IsNil() {
				snap[f.Name] = nil
				continue
			}
		}

		snap[f.Name] = fv.MethodByName("Peek").Call(nil)[0].Interface()
	}

	return snap
}

func schemaOf(t reflect.Type) ([]Field, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidSchema, t)
	}

	fields := make([]Field, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)

		if !f.IsExported() {
			return nil, fmt.Errorf("%w: field %s is not exported", ErrInvalidSchema, f.Name)
		}

		switch {
		case f.Type.Kind() == reflect.Func:
			fields = append(fields, Field{Name: f.Name, Kind: FieldCallable, Type: f.Type})
		case isReadOnly(f.Type):
			fields = append(fields, Field{Name: f.Name, Kind: FieldValue, Type: f.Type})
		default:
			return nil, fmt.Errorf("%w: field %s of type %s is neither ReadOnly nor a func", ErrInvalidSchema, f.Name, f.Type)
		}
	}

	return fields, nil
}

// isReadOnly reports whether t is a ReadOnly[V] interface. Concrete signals are rejected
// so consumers of an instance never get write access.
func isReadOnly(t reflect.Type) bool {
	if t.Kind() != reflect.Interface || t.NumMethod() != 2 {
		return false
	}

	read, ok := t.MethodByName("Read")
	if !ok {
		return false
	}
	peek, ok := t.MethodByName("Peek")
	if !ok {
		return false
	}

	for _, m := range []reflect.Method{read, peek} {
		if m.Type.NumIn() != 0 || m.Type.NumOut() != 1 {
			return false
		}
	}

	return read.Type.Out(0) == peek.Type.Out(0)
}
