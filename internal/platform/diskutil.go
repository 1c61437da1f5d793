package platform

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"howett.net/plist"

	"github.com/gajzzs/usbwrite/internal/logger"
)

// diskutilRequiredPaths is the filesystem layout expected on macOS.
var diskutilRequiredPaths = []string{"/Volumes", "/System/Library"}

var totalBytesPattern = regexp.MustCompile(`\((\d+) Bytes\)`)

// diskutilList mirrors the part of "diskutil list -plist" we need.
type diskutilList struct {
	WholeDisks []string `plist:"WholeDisks"`
}

// DiskutilBackend discovers devices on macOS through diskutil.
type DiskutilBackend struct {
	runner Runner
	log    zerolog.Logger
}

// NewDiskutilBackend fails when the host does not look like macOS or
// diskutil is missing.
func NewDiskutilBackend(runner Runner) (*DiskutilBackend, error) {
	if err := requirePaths(diskutilRequiredPaths...); err != nil {
		return nil, err
	}
	if err := requireExecutable(runner, "diskutil"); err != nil {
		return nil, err
	}
	return newDiskutilBackend(runner), nil
}

func newDiskutilBackend(runner Runner) *DiskutilBackend {
	return &DiskutilBackend{runner: runner, log: logger.WithComponent("diskutil")}
}

func (b *DiskutilBackend) Name() string { return "diskutil" }

func (b *DiskutilBackend) Discover() ([]Result, error) {
	out, err := b.runner.Output("diskutil", "list", "-plist")
	if err != nil {
		return nil, fmt.Errorf("failed to list disks: %w", err)
	}

	var list diskutilList
	if _, err := plist.Unmarshal(out, &list); err != nil {
		return nil, fmt.Errorf("failed to decode disk list: %w", err)
	}

	results := make([]Result, 0, len(list.WholeDisks))
	for _, id := range list.WholeDisks {
		dev, err := b.build("/dev/"+id, false)
		if err != nil {
			results = append(results, skipped("%s: %v", id, err))
			continue
		}
		results = append(results, Result{Device: dev})
	}
	return results, nil
}

// build reads one node. Only top-level nodes (child == false) look for
// partitions.
func (b *DiskutilBackend) build(node string, child bool) (*diskutilDevice, error) {
	out, err := b.runner.Output("diskutil", "info", node)
	if err != nil {
		return nil, fmt.Errorf("failed to read info for %s: %w", node, err)
	}

	dev := newDiskutilDevice(ParseAttributes(string(out)), b.runner)
	if dev.node == "" {
		dev.node = node
	}
	if child {
		return dev, nil
	}

	indices, err := b.partitionIndices(node)
	if err != nil {
		b.log.Debug().Str("node", node).Err(err).Msg("no partition listing")
		return dev, nil
	}
	for _, i := range indices {
		part, err := b.build(fmt.Sprintf("%ss%d", node, i), true)
		if err != nil {
			b.log.Debug().Str("node", node).Int("index", i).Err(err).Msg("partition skipped")
			continue
		}
		dev.children = append(dev.children, part)
	}
	return dev, nil
}

func (b *DiskutilBackend) partitionIndices(node string) ([]int, error) {
	out, err := b.runner.Output("diskutil", "list", node)
	if err != nil {
		return nil, err
	}
	return parsePartitionIndices(out), nil
}

// parsePartitionIndices collects the "N:" prefixes of a diskutil list table.
// Index 0 is the whole-disk row and is left out.
func parsePartitionIndices(out []byte) []int {
	var indices []int
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		prefix, _, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok {
			continue
		}
		i, err := strconv.Atoi(prefix)
		if err != nil || i < 1 {
			continue
		}
		indices = append(indices, i)
	}
	return indices
}

type diskutilDevice struct {
	baseDevice
	attrs  map[string]string
	runner Runner
}

func newDiskutilDevice(attrs map[string]string, runner Runner) *diskutilDevice {
	dev := &diskutilDevice{attrs: attrs, runner: runner}

	dev.node = attrs["device_node"]
	if dev.node == "" && attrs["device_identifier"] != "" {
		dev.node = "/dev/" + attrs["device_identifier"]
	}
	dev.mounted = attrs["mounted"] == "Yes"
	dev.mountPoint = attrs["mount_point"]

	media := attrs["device_media_name"]
	if media == "" {
		media = attrs["media_name"]
	}
	dev.name = media
	if volume := attrs["volume_name"]; volume != "" && volume != media && !strings.HasPrefix(volume, "Not applicable") {
		dev.name = fmt.Sprintf("%s (%s)", media, volume)
	}

	total := attrs["total_size"]
	if total == "" {
		total = attrs["disk_size"]
	}
	if m := totalBytesPattern.FindStringSubmatch(total); m != nil {
		if size, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			dev.size = size
		}
	}
	return dev
}

// IsValid accepts only external, writable, ejectable USB whole disks.
func (d *diskutilDevice) IsValid() bool {
	if !d.baseDevice.IsValid() {
		return false
	}
	a := d.attrs
	id := a["device_identifier"]
	return id != "" && id == a["part_of_whole"] &&
		a["protocol"] == "USB" &&
		a["read_only_media"] != "Yes" && a["media_read_only"] != "Yes" &&
		a["ejectable"] == "Yes" &&
		a["whole"] == "Yes" &&
		!d.internal()
}

func (d *diskutilDevice) internal() bool {
	return d.attrs["internal"] == "Yes" || d.attrs["device_location"] == "Internal"
}

func (d *diskutilDevice) Unmount() error {
	if err := d.runner.Run("diskutil", "unmount", d.node); err != nil {
		return err
	}
	d.clearMount()
	return nil
}
