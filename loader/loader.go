// Package loader reads a raw RV64I program image from disk and places
// it into a VM's memory. There is no assembler, no relocation, and no
// symbol table: the image is exactly what the machine executes,
// starting at the first byte.
package loader

import (
	"fmt"
	"os"

	"github.com/jyjdal/rv64-emu/vm"
)

// ReadImage reads the raw binary program image at path.
func ReadImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program image %q: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("program image %q is empty", path)
	}
	return data, nil
}

// LoadImageIntoVM copies a raw program image into machine's DRAM at
// DRAMBase and resets PC to DRAMBase. machine.LoadProgram reports
// OutOfBounds if the image does not fit in the configured DRAM.
func LoadImageIntoVM(machine *vm.VM, image []byte) error {
	return machine.LoadProgram(image)
}

// LoadFile is a convenience wrapper combining ReadImage and
// LoadImageIntoVM for the common case of loading straight from disk.
func LoadFile(machine *vm.VM, path string) error {
	image, err := ReadImage(path)
	if err != nil {
		return err
	}
	return LoadImageIntoVM(machine, image)
}
