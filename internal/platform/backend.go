package platform

import (
	"errors"
	"fmt"
	"os"

	"github.com/gajzzs/usbwrite/internal/logger"
)

// ErrNoBackend is returned when no backend applies to the current host.
var ErrNoBackend = errors.New("no device backend available on this host")

// Backend discovers the device trees of one platform.
type Backend interface {
	Name() string
	// Discover returns one result per top-level candidate. An error means the
	// discovery commands themselves failed.
	Discover() ([]Result, error)
}

// Constructor builds a backend, or explains why it does not apply here.
type Constructor struct {
	Name string
	New  func(Runner) (Backend, error)
}

// Skipped records a backend that was tried and rejected.
type Skipped struct {
	Name   string
	Reason error
}

// Constructors lists every backend in the order they are tried.
var Constructors = []Constructor{
	{Name: "diskutil", New: func(r Runner) (Backend, error) { return NewDiskutilBackend(r) }},
	{Name: "udev", New: func(r Runner) (Backend, error) { return NewUdevBackend(r) }},
}

// Select returns the first backend whose constructor succeeds, along with the
// ones skipped before it.
func Select(runner Runner, constructors []Constructor) (Backend, []Skipped, error) {
	log := logger.WithComponent("platform")

	var skips []Skipped
	for _, c := range constructors {
		backend, err := c.New(runner)
		if err != nil {
			log.Debug().Str("backend", c.Name).Err(err).Msg("backend not applicable")
			skips = append(skips, Skipped{Name: c.Name, Reason: err})
			continue
		}
		log.Debug().Str("backend", c.Name).Msg("backend selected")
		return backend, skips, nil
	}
	return nil, skips, ErrNoBackend
}

// ValidDevices keeps the valid devices of results and logs every skip.
func ValidDevices(results []Result) []Device {
	log := logger.WithComponent("platform")

	var devices []Device
	for _, r := range results {
		if r.Skip != nil {
			log.Debug().Err(r.Skip).Msg("device skipped")
			continue
		}
		if !r.Device.IsValid() {
			log.Debug().Str("node", r.Device.Node()).Msg("device not a valid target")
			continue
		}
		devices = append(devices, r.Device)
	}
	return devices
}

func requirePaths(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("missing %s: %w", p, err)
		}
	}
	return nil
}

func requireExecutable(runner Runner, name string) error {
	if _, err := runner.LookPath(name); err != nil {
		return fmt.Errorf("executable %s not found: %w", name, err)
	}
	return nil
}
