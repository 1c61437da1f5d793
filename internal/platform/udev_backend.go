package platform

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gajzzs/usbwrite/internal/logger"
)

const sectorSize = 512

// udevRequiredPaths is the sysfs layout expected on Linux.
var udevRequiredPaths = []string{"/sys/class/block"}

var (
	usbDiskFilter = map[string]string{
		"ID_BUS":  "usb",
		"ID_TYPE": "disk",
		"DEVTYPE": "disk",
	}
	usbPartitionFilter = map[string]string{
		"ID_BUS":  "usb",
		"ID_TYPE": "disk",
		"DEVTYPE": "partition",
	}
)

// UdevBackend discovers devices on Linux from the udev database and the
// mount table.
type UdevBackend struct {
	runner  Runner
	sysRoot string
	log     zerolog.Logger

	// exists and fallbackMounts are replaced in tests.
	exists         func(path string) bool
	fallbackMounts func() (MountTable, error)
}

// NewUdevBackend fails when sysfs is not mounted or udevadm is missing.
func NewUdevBackend(runner Runner) (*UdevBackend, error) {
	if err := requirePaths(udevRequiredPaths...); err != nil {
		return nil, err
	}
	if err := requireExecutable(runner, "udevadm"); err != nil {
		return nil, err
	}
	return newUdevBackend(runner, "/sys"), nil
}

func newUdevBackend(runner Runner, sysRoot string) *UdevBackend {
	return &UdevBackend{
		runner:         runner,
		sysRoot:        sysRoot,
		log:            logger.WithComponent("udev"),
		exists:         pathExists,
		fallbackMounts: mountTableFromPartitions,
	}
}

func (b *UdevBackend) Name() string { return "udev" }

func (b *UdevBackend) Discover() ([]Result, error) {
	out, err := b.runner.Output("udevadm", "info", "--export-db")
	if err != nil {
		return nil, fmt.Errorf("failed to export udev database: %w", err)
	}
	manager, err := NewUdevDeviceManager(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to parse udev database: %w", err)
	}
	mounts := b.mountTable()

	var results []Result
	for _, rec := range manager.Query(usbDiskFilter) {
		dev := b.build(rec, mounts)
		if rec.Property("DEVTYPE") == "disk" {
			b.attachPartitions(dev, rec, manager, mounts)
		}
		results = append(results, Result{Device: dev})
	}
	return results, nil
}

func (b *UdevBackend) attachPartitions(parent *udevDevice, rec *UdevDevice, manager *UdevDeviceManager, mounts MountTable) {
	filter := make(map[string]string, len(usbPartitionFilter)+1)
	for k, v := range usbPartitionFilter {
		filter[k] = v
	}
	filter["ID_SERIAL"] = rec.Property("ID_SERIAL")

	for _, partRec := range manager.Query(filter) {
		part := b.build(partRec, mounts)
		if !part.IsValid() {
			b.log.Debug().Str("parent", parent.node).Str("path", partRec.Path).Msg("partition dropped")
			continue
		}
		parent.children = append(parent.children, part)
	}
}

func (b *UdevBackend) build(rec *UdevDevice, mounts MountTable) *udevDevice {
	dev := &udevDevice{runner: b.runner, exists: b.exists}

	dev.node = rec.Property("DEVNAME")
	if dev.node != "" && !strings.HasPrefix(dev.node, "/") {
		dev.node = "/dev/" + dev.node
	}
	dev.name = rec.Property("ID_MODEL")

	kernelName := rec.Name
	if kernelName == "" && dev.node != "" {
		kernelName = filepath.Base(dev.node)
	}
	if size, err := b.readSize(kernelName); err != nil {
		b.log.Debug().Str("node", dev.node).Err(err).Msg("size unavailable")
	} else {
		dev.size = size
	}

	if mp, ok := mounts[dev.node]; ok {
		dev.mounted = true
		dev.mountPoint = mp
	}
	return dev
}

// readSize reads the sector count sysfs exposes for a block device.
func (b *UdevBackend) readSize(kernelName string) (uint64, error) {
	if kernelName == "" {
		return 0, fmt.Errorf("no kernel name")
	}
	data, err := os.ReadFile(filepath.Join(b.sysRoot, "class", "block", kernelName, "size"))
	if err != nil {
		return 0, err
	}
	sectors, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, err
	}
	return sectors * sectorSize, nil
}

func (b *UdevBackend) mountTable() MountTable {
	out, err := b.runner.Output("mount")
	if err == nil {
		table, perr := ParseMountTable(bytes.NewReader(out))
		if perr == nil {
			return table
		}
		err = perr
	}
	b.log.Debug().Err(err).Msg("mount listing failed, reading partitions instead")

	table, err := b.fallbackMounts()
	if err != nil {
		b.log.Warn().Err(err).Msg("mount table unavailable")
		return MountTable{}
	}
	return table
}

type udevDevice struct {
	baseDevice
	runner Runner
	exists func(path string) bool
}

// IsValid additionally requires the node to exist right now.
func (d *udevDevice) IsValid() bool {
	return d.baseDevice.IsValid() && d.exists(d.node)
}

func (d *udevDevice) Unmount() error {
	if err := d.runner.Run("umount", d.node); err != nil {
		return err
	}
	d.clearMount()
	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
