package models

import "fmt"

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

func validationError(msg string) error {
	return fmt.Errorf("validation: %s", msg)
}

func errRequired(field string) error {
	return validationError(field + " is required")
}
