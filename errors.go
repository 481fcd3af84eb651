package impact

import (
	"errors"

	"github.com/AnatoleLucet/impact/internal"
)

var (
	ErrTrackingImbalance  = internal.ErrTrackingImbalance
	ErrCircularDependency = internal.ErrCircularDependency
	ErrPropagationCycle   = internal.ErrPropagationCycle
	ErrNoOwner            = internal.ErrNoOwner
	ErrScopeClosed        = internal.ErrScopeClosed
	ErrNoFrame            = internal.ErrNoFrame

	ErrStoreInit     = errors.New("could not initialize store")
	ErrNoProvider    = errors.New("no provider found for store")
	ErrInvalidSchema = errors.New("invalid store schema")
)
