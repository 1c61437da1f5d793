package platform

import (
	"bufio"
	"io"
	"strings"
)

// UdevDevice is one record of the udev database export.
type UdevDevice struct {
	Path       string
	Name       string
	Symlinks   []string
	Properties map[string]string
}

// Property returns the value of key, or "" when unset.
func (d *UdevDevice) Property(key string) string {
	return d.Properties[key]
}

// Matches reports whether every filter key has the given value.
func (d *UdevDevice) Matches(filters map[string]string) bool {
	for k, v := range filters {
		got, ok := d.Properties[k]
		if !ok || got != v {
			return false
		}
	}
	return true
}

// UdevDeviceManager holds a parsed udev database.
type UdevDeviceManager struct {
	devices []*UdevDevice
}

// NewUdevDeviceManager parses an export produced by "udevadm info --export-db".
func NewUdevDeviceManager(r io.Reader) (*UdevDeviceManager, error) {
	devices, err := ParseUdevDatabase(r)
	if err != nil {
		return nil, err
	}
	return &UdevDeviceManager{devices: devices}, nil
}

// Devices returns every record in export order.
func (m *UdevDeviceManager) Devices() []*UdevDevice {
	return m.devices
}

// Query returns the records matching all filters, in export order.
func (m *UdevDeviceManager) Query(filters map[string]string) []*UdevDevice {
	var matched []*UdevDevice
	for _, d := range m.devices {
		if d.Matches(filters) {
			matched = append(matched, d)
		}
	}
	return matched
}

// ParseUdevDatabase reads the line format of "udevadm info --export-db".
// A "P:" line opens a record; "N:", "S:" and "E:" lines fill in the open
// record. Lines before the first "P:" and unknown prefixes are ignored.
func ParseUdevDatabase(r io.Reader) ([]*UdevDevice, error) {
	var (
		devices []*UdevDevice
		current *UdevDevice
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		prefix, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		if prefix == "P" {
			current = &UdevDevice{Path: value, Properties: make(map[string]string)}
			devices = append(devices, current)
			continue
		}
		if current == nil {
			continue
		}

		switch prefix {
		case "N":
			current.Name = value
		case "S":
			current.Symlinks = append(current.Symlinks, value)
		case "E":
			if k, v, ok := strings.Cut(value, "="); ok {
				current.Properties[k] = v
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}
