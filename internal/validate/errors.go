package validate

import "errors"

var (
	errInvalidJSON = errors.New("invalid json")
	errNotObject   = errors.New("root must be a json object")
)
