package session

import "errors"

// displayError is implemented by errors that carry their own user-facing text.
type displayError interface {
	error
	UserMessage() string
}

const genericFailure = "Something went wrong. Your score is still shown; please try again."

// Message converts err into text fit to show the user. Collaborator errors
// are never shown verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var de displayError
	if errors.As(err, &de) {
		return de.UserMessage()
	}
	switch {
	case errors.Is(err, ErrAlreadyCompleted):
		return "This test is already finished. Press tab to start a new one."
	case errors.Is(err, ErrNotActive):
		return "Start typing to begin the test."
	}
	return genericFailure
}
