package platform

import (
	"errors"
	"fmt"
)

// Device is one node of a discovered device tree: a whole disk or one of its
// partitions.
type Device interface {
	Node() string
	Name() string
	Size() uint64
	MountPoint() string
	IsMounted() bool
	Children() []Device

	// IsValid reports whether the device can be offered as a write target.
	IsValid() bool
	// Unmount runs the platform unmount command once. A nil error means the
	// command exited zero.
	Unmount() error
}

// ErrUnmountUnsupported is returned by devices without an unmount command.
var ErrUnmountUnsupported = errors.New("unmount not supported")

// baseDevice holds the fields shared by every backend.
type baseDevice struct {
	node       string
	name       string
	size       uint64
	mountPoint string
	mounted    bool
	children   []Device
}

func (d *baseDevice) Node() string       { return d.node }
func (d *baseDevice) Name() string       { return d.name }
func (d *baseDevice) Size() uint64       { return d.size }
func (d *baseDevice) MountPoint() string { return d.mountPoint }
func (d *baseDevice) IsMounted() bool    { return d.mounted }
func (d *baseDevice) Children() []Device { return d.children }

// IsValid is the rule every backend builds on.
func (d *baseDevice) IsValid() bool {
	return d.node != "" && d.size > 0
}

// Unmount is overridden by every backend device.
func (d *baseDevice) Unmount() error {
	return fmt.Errorf("%s: %w", d.node, ErrUnmountUnsupported)
}

func (d *baseDevice) clearMount() {
	d.mounted = false
	d.mountPoint = ""
}

func (d *baseDevice) String() string {
	return Describe(d)
}

// MountedDescendants returns d if it is mounted followed by every mounted
// descendant, depth first. Mount state is read on each call.
func MountedDescendants(d Device) []Device {
	var mounted []Device
	if d.IsMounted() {
		mounted = append(mounted, d)
	}
	for _, child := range d.Children() {
		mounted = append(mounted, MountedDescendants(child)...)
	}
	return mounted
}

// Describe formats a device for menus and messages, sizes in decimal GB.
func Describe(d Device) string {
	return fmt.Sprintf("%s (%s) - %.2g GB", d.Name(), d.Node(), float64(d.Size())/1e9)
}

// Result is the outcome of building one device: either a device or the
// reason it was skipped.
type Result struct {
	Device Device
	Skip   error
}

func skipped(format string, args ...interface{}) Result {
	return Result{Skip: fmt.Errorf(format, args...)}
}
