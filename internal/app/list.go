package app

import (
	"fmt"
	"io"

	"github.com/gajzzs/usbwrite/internal/platform"
	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:                   "list",
		Short:                 "List USB storage devices that can be written to",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := DiscoverDevices(platform.NewRunner())
			if err != nil {
				return err
			}
			return WriteDeviceList(cmd.OutOrStdout(), devices)
		},
	}
}

// WriteDeviceList prints each device with its partitions and mount state.
func WriteDeviceList(out io.Writer, devices []platform.Device) error {
	if len(devices) == 0 {
		return ErrNoDevices
	}

	fmt.Fprintln(out, "Available USB Devices:")
	for i, dev := range devices {
		fmt.Fprintf(out, "%d. %s\n", i+1, platform.Describe(dev))
		if dev.IsMounted() {
			fmt.Fprintf(out, "   Mount: %s\n", dev.MountPoint())
		}
		for _, child := range dev.Children() {
			mount := "not mounted"
			if child.IsMounted() {
				mount = child.MountPoint()
			}
			fmt.Fprintf(out, "   %s: %s\n", child.Node(), mount)
		}
	}
	return nil
}
