package mailer

import (
	"context"
	"slices"
	"sync"
)

// StringFilter rewrites a subject, body or sender value before delivery.
type StringFilter func(ctx context.Context, value string) string

// HeadersFilter rewrites the header lines before delivery.
type HeadersFilter func(ctx context.Context, headers []string) []string

// BeforeSendFunc observes or modifies an Email right before the transport call.
type BeforeSendFunc func(ctx context.Context, email *Email)

// AfterSendFunc observes the outcome of a transport call.
type AfterSendFunc func(ctx context.Context, result Result, email *Email)

// Hooks holds filter and action callbacks. Callbacks run in registration order.
// The zero value is ready to use and safe for concurrent registration.
type Hooks struct {
	subject []StringFilter
	content []StringFilter
	from    []StringFilter
	headers []HeadersFilter
	before  []BeforeSendFunc
	after   []AfterSendFunc
	mu      sync.RWMutex
}

// NewHooks creates an empty hook registry.
func NewHooks() *Hooks {
	return &Hooks{}
}

// OnSubject registers a subject filter.
func (h *Hooks) OnSubject(fn StringFilter) *Hooks {
	h.mu.Lock()
	defer h.mu.Unlock()
	if fn != nil {
		h.subject = append(h.subject, fn)
	}
	return h
}

// OnContent registers a body filter.
func (h *Hooks) OnContent(fn StringFilter) *Hooks {
	h.mu.Lock()
	defer h.mu.Unlock()
	if fn != nil {
		h.content = append(h.content, fn)
	}
	return h
}

// OnFrom registers a sender filter.
func (h *Hooks) OnFrom(fn StringFilter) *Hooks {
	h.mu.Lock()
	defer h.mu.Unlock()
	if fn != nil {
		h.from = append(h.from, fn)
	}
	return h
}

// OnHeaders registers a headers filter.
func (h *Hooks) OnHeaders(fn HeadersFilter) *Hooks {
	h.mu.Lock()
	defer h.mu.Unlock()
	if fn != nil {
		h.headers = append(h.headers, fn)
	}
	return h
}

// BeforeSend registers an action run before each transport call.
func (h *Hooks) BeforeSend(fn BeforeSendFunc) *Hooks {
	h.mu.Lock()
	defer h.mu.Unlock()
	if fn != nil {
		h.before = append(h.before, fn)
	}
	return h
}

// AfterSend registers an action run after each transport call.
func (h *Hooks) AfterSend(fn AfterSendFunc) *Hooks {
	h.mu.Lock()
	defer h.mu.Unlock()
	if fn != nil {
		h.after = append(h.after, fn)
	}
	return h
}

func (h *Hooks) filterSubject(ctx context.Context, v string) string {
	return applyStringFilters(ctx, h.snapshot(func() []StringFilter { return h.subject }), v)
}

func (h *Hooks) filterContent(ctx context.Context, v string) string {
	return applyStringFilters(ctx, h.snapshot(func() []StringFilter { return h.content }), v)
}

func (h *Hooks) filterFrom(ctx context.Context, v string) string {
	return applyStringFilters(ctx, h.snapshot(func() []StringFilter { return h.from }), v)
}

func (h *Hooks) filterHeaders(ctx context.Context, headers []string) []string {
	h.mu.RLock()
	filters := slices.Clone(h.headers)
	h.mu.RUnlock()

	for _, fn := range filters {
		headers = fn(ctx, headers)
	}
	return headers
}

func (h *Hooks) runBefore(ctx context.Context, email *Email) {
	h.mu.RLock()
	actions := slices.Clone(h.before)
	h.mu.RUnlock()

	for _, fn := range actions {
		fn(ctx, email)
	}
}

func (h *Hooks) runAfter(ctx context.Context, result Result, email *Email) {
	h.mu.RLock()
	actions := slices.Clone(h.after)
	h.mu.RUnlock()

	for _, fn := range actions {
		fn(ctx, result, email)
	}
}

func (h *Hooks) snapshot(get func() []StringFilter) []StringFilter {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(get())
}

func applyStringFilters(ctx context.Context, filters []StringFilter, v string) string {
	for _, fn := range filters {
		v = fn(ctx, v)
	}
	return v
}
