package impact

import "github.com/AnatoleLucet/impact/internal"

// Scope owns the signals, derived values, effects and nested scopes created while it runs,
// and tears them down when closed.
type Scope struct {
	owner *internal.Owner
}

// NewScope creates a scope, nested in the current owner if there is one.
func NewScope() *Scope {
	return &Scope{
		internal.GetRuntime().NewScope(),
	}
}

// Open creates a scope and returns the function releasing it.
// The release must run on every exit path, usually with defer.
func Open() (*Scope, func()) {
	s := NewScope()
	return s, s.Close
}

func (s *Scope) ID() string { return s.owner.ID() }

// Run fn with the scope as the current owner.
// Everything fn creates belongs to the scope.
func (s *Scope) Run(fn func() error) error {
	if s.owner.Disposed() {
		return ErrScopeClosed
	}

	var err error
	s.owner.Run(func() { err = fn() })
	return err
}

// OnCleanup registers fn to run once when the scope closes.
// On a closed scope fn runs right away.
func (s *Scope) OnCleanup(fn func()) { s.owner.OnCleanup(fn) }

// Close disposes nested owners, last created first, then runs the cleanups in registration order.
// Closing twice is a no-op.
func (s *Scope) Close() { s.owner.Dispose() }

func (s *Scope) Closed() bool { return s.owner.Disposed() }
