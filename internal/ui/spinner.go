package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/huh/spinner"
)

// WithSpinner runs fn behind a spinner titled msg. Without a terminal it
// prints msg once to w and runs fn directly.
func WithSpinner(w io.Writer, msg string, fn func() error) error {
	if !IsTTY() {
		fmt.Fprintf(w, "%s...\n", msg)
		return fn()
	}

	var fnErr error
	err := spinner.New().
		Title(msg).
		Action(func() { fnErr = fn() }).
		Run()
	if err != nil {
		return err
	}
	return fnErr
}
