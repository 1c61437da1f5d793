package app

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/gajzzs/usbwrite/internal/config"
	"github.com/gajzzs/usbwrite/internal/platform"
	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWithoutImage(t *testing.T) {
	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), "usbwrite [options] IMAGE_FILE")
}

func TestRootCommandRejectsExtraArgs(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"a.img", "b.img"})
	assert.Error(t, cmd.Execute())
}

func TestRootCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	for long, short := range map[string]string{
		"device":   "d",
		"force":    "f",
		"unmount":  "u",
		"checksum": "s",
	} {
		flag := cmd.Flags().Lookup(long)
		require.NotNil(t, flag, long)
		assert.Equal(t, short, flag.Shorthand)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	list, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)
	assert.Equal(t, "list", list.Name())
}

func TestRootCommandBadConfig(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "disk.img"})
	assert.Error(t, cmd.Execute())
}

func TestPromptError(t *testing.T) {
	other := errors.New("terminal gone")
	assert.ErrorIs(t, promptError(promptui.ErrInterrupt), ErrAborted)
	assert.ErrorIs(t, promptError(promptui.ErrEOF), ErrAborted)
	assert.ErrorIs(t, promptError(fmt.Errorf("wrapped: %w", promptui.ErrInterrupt)), ErrAborted)
	assert.Equal(t, other, promptError(other))
}

func TestWriteDeviceList(t *testing.T) {
	part1 := &fakeDevice{node: "/dev/sdb1", size: 1e9, mountPoint: "/media/BOOT"}
	part2 := &fakeDevice{node: "/dev/sdb2", size: 7e9}
	stick := &fakeDevice{node: "/dev/sdb", name: "SanDisk Ultra", size: 8e9, children: []platform.Device{part1, part2}}
	raw := &fakeDevice{node: "/dev/sdc", name: "Kingston", size: 16e9, mountPoint: "/media/RAW"}

	var out bytes.Buffer
	require.NoError(t, WriteDeviceList(&out, []platform.Device{stick, raw}))

	assert.Equal(t, "Available USB Devices:\n"+
		"1. SanDisk Ultra (/dev/sdb) - 8 GB\n"+
		"   /dev/sdb1: /media/BOOT\n"+
		"   /dev/sdb2: not mounted\n"+
		"2. Kingston (/dev/sdc) - 16 GB\n"+
		"   Mount: /media/RAW\n", out.String())

	assert.ErrorIs(t, WriteDeviceList(&out, nil), ErrNoDevices)
}
