package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/bigincgenesis/bigcli/internal/buyflow"
)

var (
	toastSuccess = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSuccess).
			Padding(0, 1)
	toastDestructive = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorError).
				Padding(0, 1)
)

// RenderToast draws a notification box.
func RenderToast(t buyflow.Toast) string {
	if t.Variant == buyflow.VariantDestructive {
		return toastDestructive.Render(StyleError.Render(t.Title) + "\n" + t.Description)
	}
	return toastSuccess.Render(StyleSuccess.Render(t.Title) + "\n" + t.Description)
}

// Toaster prints toasts to a writer.
type Toaster struct {
	mu  sync.Mutex
	w   io.Writer
	log []buyflow.Toast
}

// NewToaster returns a Toaster writing to w.
func NewToaster(w io.Writer) *Toaster {
	return &Toaster{w: w}
}

// Notify implements buyflow.Notifier.
func (t *Toaster) Notify(toast buyflow.Toast) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = append(t.log, toast)
	fmt.Fprintln(t.w, RenderToast(toast))
}

// Shown returns the toasts printed so far.
func (t *Toaster) Shown() []buyflow.Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]buyflow.Toast(nil), t.log...)
}
