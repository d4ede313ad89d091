// Package wire implements the chrpc self-describing value codec: the
// Type grammar (PRIM | ARRAY TYPE | STRUCT n TYPE+) and the Value/
// InnerValue pair that rides over it, both serialized little-endian.
package wire

import "fmt"

// Status is the small fixed status enumeration the codec returns. It
// implements error so callers can use ordinary Go error-handling, while
// still being able to recover the exact wire status code (e.g. to embed
// in an RPC response) with a type assertion.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusSyntaxError
	StatusUnexpectedEnd
	StatusBufferTooSmall
	StatusEmptyStructType
	StatusStructTypeTooLarge
	StatusMalformedType
)

func (s Status) Error() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSyntaxError:
		return "syntax error"
	case StatusUnexpectedEnd:
		return "unexpected end of buffer"
	case StatusBufferTooSmall:
		return "buffer too small"
	case StatusEmptyStructType:
		return "empty struct type"
	case StatusStructTypeTooLarge:
		return "struct type has too many fields"
	case StatusMalformedType:
		return "malformed type"
	default:
		return fmt.Sprintf("wire.Status(%d)", uint8(s))
	}
}

// AsStatus recovers the wire Status carried by err, if any. ok is false
// for a nil error or an error from outside this package.
func AsStatus(err error) (s Status, ok bool) {
	if err == nil {
		return StatusSuccess, false
	}
	s, ok = err.(Status)
	return
}
