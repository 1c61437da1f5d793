package platform

import (
	"bufio"
	"io"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// MountTable maps a device node to the path it is mounted on.
type MountTable map[string]string

// ParseMountTable reads the output of mount(8): "<source> on <target> ...".
// When a source appears twice the last target wins.
func ParseMountTable(r io.Reader) (MountTable, error) {
	table := make(MountTable)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 3 && fields[1] == "on" {
			table[fields[0]] = fields[2]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// mountTableFromPartitions builds the table from the kernel's mount list
// when mount(8) cannot be run.
func mountTableFromPartitions() (MountTable, error) {
	partitions, err := disk.Partitions(true)
	if err != nil {
		return nil, err
	}

	table := make(MountTable)
	for _, p := range partitions {
		table[p.Device] = p.Mountpoint
	}
	return table, nil
}
