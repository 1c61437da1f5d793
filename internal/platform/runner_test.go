package platform

import (
	"errors"
	"strings"
)

// fakeRunner answers commands from canned output keyed by the full command
// line and records every command it is asked to run.
type fakeRunner struct {
	outputs map[string]string
	failRun map[string]bool
	paths   map[string]bool
	queried []string
	ran     []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string]string),
		failRun: make(map[string]bool),
		paths:   make(map[string]bool),
	}
}

func commandLine(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (f *fakeRunner) Output(name string, args ...string) ([]byte, error) {
	line := commandLine(name, args...)
	f.queried = append(f.queried, line)
	out, ok := f.outputs[line]
	if !ok {
		return nil, errors.New("exit status 1")
	}
	return []byte(out), nil
}

func (f *fakeRunner) Run(name string, args ...string) error {
	line := commandLine(name, args...)
	f.ran = append(f.ran, line)
	if f.failRun[line] {
		return errors.New("exit status 1")
	}
	return nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.paths[name] {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("executable file not found in $PATH")
}
