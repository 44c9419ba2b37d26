// Package errs accumulates independent failures discovered while building a
// model registry or a process tree, so all of them surface together instead
// of failing fast on the first one (a model with three unregisterable
// vertices should report all three).
package errs

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Errs is a collection of errors.
type Errs struct {
	mu   sync.RWMutex
	errs []error
}

// Add appends err to the collection. A nil err is a no-op.
func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

// Errored reports whether any error has been added.
func (e *Errs) Errored() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.errs) > 0
}

// Err collapses the collection into a single error, or nil if empty.
func (e *Errs) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		return errors.New(e.String())
	}
}

// String renders every accumulated error as a bulleted list.
func (e *Errs) String() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.errs) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error", len(e.errs))
	if len(e.errs) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString(" occurred:")
	for _, err := range e.errs {
		sb.WriteString("\n\t* ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Len returns the number of accumulated errors.
func (e *Errs) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.errs)
}
