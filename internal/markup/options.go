package markup

import "fmt"

// ListScope controls which nodes the list container wraps.
type ListScope string

const (
	// ListScopeFragment wraps the whole fragment in a single list container,
	// whether or not it holds list items.
	ListScopeFragment ListScope = "fragment"
	// ListScopeRuns wraps only runs of consecutive list items.
	ListScopeRuns ListScope = "runs"
)

// ParseListScope validates a configured scope name.
func ParseListScope(s string) (ListScope, error) {
	switch ListScope(s) {
	case ListScopeFragment, "":
		return ListScopeFragment, nil
	case ListScopeRuns:
		return ListScopeRuns, nil
	}
	return "", fmt.Errorf("unknown list scope %q", s)
}

// Options configures Render.
type Options struct {
	ListScope ListScope
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{ListScope: ListScopeFragment}
}

// WithListScope returns Options with the specified list scope.
func (o Options) WithListScope(scope ListScope) Options {
	o.ListScope = scope
	return o
}
