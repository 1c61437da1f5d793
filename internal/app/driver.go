package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gajzzs/usbwrite/internal/checksum"
	"github.com/gajzzs/usbwrite/internal/imaging"
	"github.com/gajzzs/usbwrite/internal/logger"
	"github.com/gajzzs/usbwrite/internal/platform"
	"github.com/gajzzs/usbwrite/internal/progress"
)

var (
	ErrAborted        = errors.New("aborted")
	ErrUsage          = errors.New("missing IMAGE_FILE argument")
	ErrImageNotFound  = errors.New("image file not found")
	ErrNoDevices      = errors.New("no USB storage devices found")
	ErrDeviceNotFound = errors.New("no valid device with that node")
	ErrImageTooLarge  = errors.New("image is larger than the device")
)

// Options are the choices made on the command line.
type Options struct {
	Image    string
	Device   string
	Force    bool
	Unmount  bool
	Checksum string
	BarWidth int
}

// Driver runs one imaging session: pick a device, unmount it, confirm and
// write.
type Driver struct {
	Out      io.Writer
	Prompt   Prompter
	Discover func() ([]platform.Device, error)
	Copy     func(ctx context.Context, src, dst string, fn imaging.ProgressFunc) error
}

// NewDriver wires a driver to the host: the first applicable backend, the
// terminal prompter and the real copy engine.
func NewDriver(out io.Writer, blockSize int) *Driver {
	copier := &imaging.Copier{BlockSize: blockSize}
	return &Driver{
		Out:    out,
		Prompt: NewTerminalPrompter(),
		Discover: func() ([]platform.Device, error) {
			return DiscoverDevices(platform.NewRunner())
		},
		Copy: copier.Copy,
	}
}

// DiscoverDevices selects a backend and returns the valid devices it finds.
func DiscoverDevices(runner platform.Runner) ([]platform.Device, error) {
	backend, _, err := platform.Select(runner, platform.Constructors)
	if err != nil {
		return nil, err
	}
	results, err := backend.Discover()
	if err != nil {
		return nil, fmt.Errorf("%s discovery failed: %w", backend.Name(), err)
	}
	return platform.ValidDevices(results), nil
}

// Run performs the session described by opts. Cancelling ctx stops the
// session with ErrAborted; a copy in progress still flushes the device.
func (d *Driver) Run(ctx context.Context, opts Options) error {
	log := logger.WithComponent("driver")

	info, err := os.Stat(opts.Image)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrImageNotFound, opts.Image)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not an image file", opts.Image)
	}

	if opts.Checksum != "" {
		if err := d.verify(opts.Image, opts.Checksum); err != nil {
			return err
		}
	}

	devices, err := d.Discover()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return ErrNoDevices
	}

	target, err := d.choose(devices, opts.Device)
	if err != nil {
		return err
	}
	log.Debug().Str("node", target.Node()).Uint64("size", target.Size()).Msg("target selected")

	if uint64(info.Size()) > target.Size() {
		return fmt.Errorf("%w: %d bytes > %d bytes", ErrImageTooLarge, info.Size(), target.Size())
	}

	if err := aborted(ctx); err != nil {
		return err
	}
	if err := d.unmount(target, opts.Force || opts.Unmount); err != nil {
		return err
	}

	if !opts.Force {
		ok, err := d.Prompt.Confirm(fmt.Sprintf("All data on %s will be lost. Continue", platform.Describe(target)))
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	if err := aborted(ctx); err != nil {
		return err
	}

	fmt.Fprintf(d.Out, "Writing %s to %s\n", opts.Image, target.Node())
	bar := progress.NewBar(d.Out, opts.BarWidth)
	err = d.Copy(ctx, opts.Image, target.Node(), bar.Update)
	bar.Finish()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return fmt.Errorf("%w: %v", ErrAborted, err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(d.Out, "Done.")
	return nil
}

func aborted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrAborted, err)
	}
	return nil
}

func (d *Driver) verify(image, digest string) error {
	sum, err := checksum.Parse(digest)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "Verifying %s checksum of %s\n", sum.Type, image)
	return sum.Verify(image)
}

// choose returns the device with the requested node, or asks the operator
// when none was requested.
func (d *Driver) choose(devices []platform.Device, node string) (platform.Device, error) {
	if node != "" {
		for _, dev := range devices {
			if dev.Node() == node {
				return dev, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, node)
	}

	items := make([]string, len(devices))
	for i, dev := range devices {
		items[i] = platform.Describe(dev)
	}
	i, err := d.Prompt.Select("Select the target device", items)
	if err != nil {
		return nil, err
	}
	return devices[i], nil
}

// unmount unmounts every mounted node of target, asking first unless auto
// is set. Declining aborts the session.
func (d *Driver) unmount(target platform.Device, auto bool) error {
	mounted := platform.MountedDescendants(target)
	if len(mounted) == 0 {
		return nil
	}

	if !auto {
		fmt.Fprintf(d.Out, "%s has mounted partitions:\n", target.Node())
		for _, m := range mounted {
			fmt.Fprintf(d.Out, "  %s on %s\n", m.Node(), m.MountPoint())
		}
		ok, err := d.Prompt.Confirm("Unmount them")
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	for _, m := range mounted {
		node, mountPoint := m.Node(), m.MountPoint()
		fmt.Fprintf(d.Out, "Unmounting %s\n", mountPoint)
		if err := m.Unmount(); err != nil {
			return fmt.Errorf("failed to unmount %s (%s): %w", mountPoint, node, err)
		}
	}
	return nil
}
