package validation

// Error is a rejected input. Handlers surface it as 400 with Message.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &Error{Field: field, Message: message}
}
