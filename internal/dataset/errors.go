package dataset

import (
	"errors"
	"fmt"
)

// ErrFileNotFound is returned when the dataset source does not exist
var ErrFileNotFound = errors.New("file not found")

// LoadError wraps any other failure while reading or parsing a dataset
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error loading data: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
