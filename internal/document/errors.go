package document

import (
	"errors"
	"fmt"

	"github.com/vk/nodesync/internal/nodeid"
)

// Common sentinel errors
var (
	ErrNodeNotFound    = errors.New("node not found")
	ErrPortNotFound    = errors.New("port not found")
	ErrDuplicateNode   = errors.New("node already exists")
	ErrNodeConnected   = errors.New("node still has connections")
	ErrNotOwner        = errors.New("port does not store connection references")
	ErrInvalidEndpoint = errors.New("invalid connection endpoint")
)

// PortError provides structured error information for a failed operation on
// one port.
type PortError struct {
	Op    string
	Port  nodeid.PortKey
	Cause error
}

// Error implements the error interface.
func (e *PortError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *PortError) Unwrap() error {
	return e.Cause
}

func portErr(op string, key nodeid.PortKey, cause error) error {
	return &PortError{Op: op, Port: key, Cause: cause}
}
