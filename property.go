package videoflip

import (
	"fmt"
	"log/slog"
)

// PropertyMethod is the name of the only property of the filter.
const PropertyMethod = "method"

// SetProperty sets a property by name. "method" accepts a Method, its nick
// or its integer value. Unknown names are logged and reported with
// ErrUnknownProperty.
func (f *Filter) SetProperty(name string, value any) error {
	return setProperty(f.id, name, value, f.SetMethod)
}

// GetProperty reads a property by name. "method" is returned as a Method.
func (f *Filter) GetProperty(name string) (any, error) {
	return getProperty(f.id, name, f.Method)
}

// Property is GetProperty; it makes Filter a graph.Element.
func (f *Filter) Property(name string) (any, error) { return f.GetProperty(name) }

// SetProperty sets a property by name, like Filter.SetProperty.
func (f *GLFilter) SetProperty(name string, value any) error {
	return setProperty(f.id, name, value, f.SetMethod)
}

// GetProperty reads a property by name, like Filter.GetProperty.
func (f *GLFilter) GetProperty(name string) (any, error) {
	return getProperty(f.id, name, f.Method)
}

func setProperty(id, name string, value any, set func(Method) error) error {
	if name != PropertyMethod {
		slog.Warn("videoflip: unknown property", "id", id, "property", name)
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}

	var m Method
	switch v := value.(type) {
	case Method:
		m = v
	case int:
		m = Method(v)
	case string:
		parsed, err := ParseMethod(v)
		if err != nil {
			return fmt.Errorf("videoflip: %w", err)
		}
		m = parsed
	default:
		return fmt.Errorf("%w: method wants a Method, nick or int, got %T", ErrInvalidMethod, value)
	}
	return set(m)
}

func getProperty(id, name string, get func() Method) (any, error) {
	if name != PropertyMethod {
		slog.Warn("videoflip: unknown property", "id", id, "property", name)
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return get(), nil
}
