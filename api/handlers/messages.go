// api/handlers/messages.go
package handlers

import "errors"

// Response details rendered in the error body.
const (
	MsgMissedParams          = "Missed parameters in the request"
	MsgNotValidQueryParams   = "Not valid query parameters"
	MsgNotValidParams        = "Not valid parameters were found in the request"
	MsgUserAlreadyRegistered = "User already registered"
	MsgObjectNotFound        = "Object not found"
	MsgDatabaseError         = "DATA BASE ERROR"
	MsgTooManyRequests       = "Too many requests. Please wait."
)

var (
	ErrMissingParams     = errors.New("missed parameters")
	ErrNotValidParams    = errors.New("not valid parameters")
	ErrAlreadyRegistered = errors.New("already registered")
)
