package app

import (
	"fmt"

	"github.com/gajzzs/usbwrite/internal/checksum"
	"github.com/gajzzs/usbwrite/internal/config"
	"github.com/gajzzs/usbwrite/internal/logger"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	opts       Options
	verbose    bool
	configPath string
}

func NewRootCommand() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "usbwrite [options] IMAGE_FILE",
		Short: "Write a raw disk image to a USB storage device",
		Long: "usbwrite copies a disk image byte for byte onto a removable USB drive,\n" +
			"unmounting its partitions first and asking before anything is destroyed.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Usage()
				return ErrUsage
			}

			cfg := config.GetConfig()
			opts := flags.opts
			opts.Image = args[0]
			opts.Unmount = opts.Unmount || cfg.Unmount
			opts.BarWidth = cfg.BarWidth

			return NewDriver(cmd.OutOrStdout(), cfg.BlockSize).Run(cmd.Context(), opts)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	f := cmd.Flags()
	f.StringVarP(&flags.opts.Device, "device", "d", "", "device node to write to, e.g. /dev/sdb")
	f.BoolVarP(&flags.opts.Force, "force", "f", false, "do not ask before unmounting or overwriting")
	f.BoolVarP(&flags.opts.Unmount, "unmount", "u", false, "unmount mounted partitions without asking")
	f.StringVarP(&flags.opts.Checksum, "checksum", "s", "",
		fmt.Sprintf("verify the image first, as [TYPE:]HEX (%v)", checksum.Types()))

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log discovery details to stderr")
	pf.StringVar(&flags.configPath, "config", "", "config file (default $"+config.EnvConfigFile+" or the user config dir)")

	cmd.AddCommand(NewListCommand())
	return cmd
}

func setup(flags rootFlags) error {
	if err := config.InitConfig(flags.configPath); err != nil {
		return err
	}
	return logger.Init(logger.Config{
		Level: config.GetConfig().LogLevel,
		Debug: flags.verbose,
	})
}
