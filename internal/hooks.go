package internal

import "time"

// Hooks observes the runtime. Implementations must not write signals.
type Hooks interface {
	SignalWritten(node Info, version uint64)
	DerivedComputed(node Info, took time.Duration, failed bool)
	EffectRan(node Info, took time.Duration, failed bool)
	PassCompleted(sources, reactions int, took time.Duration)
	WriteDeferred(node Info)
	ScopeOpened(id string)
	ScopeClosed(id string)
}

// NopHooks ignores every event. Embed it to implement a subset of Hooks.
type NopHooks struct{}

func (NopHooks) SignalWritten(Info, uint64)                {}
func (NopHooks) DerivedComputed(Info, time.Duration, bool) {}
func (NopHooks) EffectRan(Info, time.Duration, bool)       {}
func (NopHooks) PassCompleted(int, int, time.Duration)     {}
func (NopHooks) WriteDeferred(Info)                        {}
func (NopHooks) ScopeOpened(string)                        {}
func (NopHooks) ScopeClosed(string)                        {}

// MultiHooks fans events out in order.
type MultiHooks []Hooks

func (m MultiHooks) SignalWritten(node Info, version uint64) {
	for _, h := range m {
		h.SignalWritten(node, version)
	}
}

func (m MultiHooks) DerivedComputed(node Info, took time.Duration, failed bool) {
	for _, h := range m {
		h.DerivedComputed(node, took, failed)
	}
}

func (m MultiHooks) EffectRan(node Info, took time.Duration, failed bool) {
	for _, h := range m {
		h.EffectRan(node, took, failed)
	}
}

func (m MultiHooks) PassCompleted(sources, reactions int, took time.Duration) {
	for _, h := range m {
		h.PassCompleted(sources, reactions, took)
	}
}

func (m MultiHooks) WriteDeferred(node Info) {
	for _, h := range m {
		h.WriteDeferred(node)
	}
}

func (m MultiHooks) ScopeOpened(id string) {
	for _, h := range m {
		h.ScopeOpened(id)
	}
}

func (m MultiHooks) ScopeClosed(id string) {
	for _, h := range m {
		h.ScopeClosed(id)
	}
}
