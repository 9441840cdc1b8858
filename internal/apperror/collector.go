package apperror

import "fmt"

// Collector accumulates field errors while a payload is validated.
type Collector struct {
	fields []FieldError
}

func (c *Collector) Add(kind Kind, field, message string) {
	c.fields = append(c.fields, FieldError{Kind: kind, Field: field, Message: message})
}

func (c *Collector) Addf(kind Kind, field, format string, args ...any) {
	c.Add(kind, field, fmt.Sprintf(format, args...))
}

// Len returns the number of collected field errors.
func (c *Collector) Len() int {
	return len(c.fields)
}

// Err returns nil when nothing was collected. The resulting error takes
// its kind from the first field error.
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	first := c.fields[0]
	return &Error{
		Kind:    first.Kind,
		Field:   first.Field,
		Message: first.Message,
		Fields:  append([]FieldError(nil), c.fields...),
	}
}

// Path helpers build JSON field paths.

func Index(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}

func Join(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}
