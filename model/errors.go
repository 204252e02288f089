package model

import "fmt"

// IndexError is returned when a node index falls outside [0, Count).
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("node index %d out of range [0,%d)", e.Index, e.Count)
}

// InvalidMoveError is returned by Connect for moves the rules do not allow.
type InvalidMoveError struct {
	A, B   int
	Reason string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move %d->%d: %s", e.A, e.B, e.Reason)
}

// InvalidArgumentError is returned for bad board construction parameters.
type InvalidArgumentError struct {
	Name  string
	Value interface{}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s=%v", e.Name, e.Value)
}
