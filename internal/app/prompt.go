package app

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// Prompter asks the operator questions.
type Prompter interface {
	// Select returns the index of the chosen item.
	Select(label string, items []string) (int, error)
	// Confirm returns false when the operator answers no.
	Confirm(label string) (bool, error)
}

type terminalPrompter struct{}

// NewTerminalPrompter returns a Prompter on the controlling terminal.
// Ctrl-C and Ctrl-D become ErrAborted.
func NewTerminalPrompter() Prompter {
	return terminalPrompter{}
}

func (terminalPrompter) Select(label string, items []string) (int, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}
	i, _, err := prompt.Run()
	if err != nil {
		return 0, promptError(err)
	}
	return i, nil
}

func (terminalPrompter) Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, promptError(err)
	}
	return true, nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return ErrAborted
	}
	return err
}
