package tutor

import "errors"

// ErrMalformedResponse marks a tutor-service reply whose body was not
// valid JSON. This is a distinct failure class from an explicit
// rejection (ServiceError) and from transport-level errors.
var ErrMalformedResponse = errors.New("invalid server response")

// ServiceError is an explicit rejection by the tutor service, either a
// success:false body or an error-bodied non-2xx status. Message carries
// the server-supplied error string verbatim; it may be empty, in which
// case callers fall back to a generic message.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return "tutor service rejected the request"
	}
	return e.Message
}

// Reason extracts the user-facing failure reason from a tutor call
// error, preferring the server-supplied string and falling back to the
// given generic message.
func Reason(err error, generic string) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if errors.Is(err, ErrMalformedResponse) {
		return "Réponse du serveur invalide"
	}
	return generic
}
