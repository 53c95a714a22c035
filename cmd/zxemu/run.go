package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/oisee/gozxcore/internal/machine"
)

// errNoRom is returned when no --rom path was supplied. gozxcore does
// not embed the copyrighted Spectrum ROM image, so a ROM path is
// effectively mandatory today even though spec §6 describes it as an
// override of a built-in default — documented as an Open Question
// resolution in DESIGN.md.
var errNoRom = errors.New("no ROM supplied: pass --rom <path to 16384-byte ROM image>")

// stageError tags which loading stage failed so main can map it to the
// documented exit code (spec §6) without string-sniffing messages.
type stageError struct {
	stage string // "rom" or "snapshot"
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func romError(err error) error      { return &stageError{stage: "rom", err: err} }
func snapshotError(err error) error { return &stageError{stage: "snapshot", err: err} }

func loadMachine(snapshotPath, romPath string) (*machine.Machine, error) {
	if romPath == "" {
		return nil, romError(errNoRom)
	}
	romData, err := os.ReadFile(romPath)
	if err != nil {
		return nil, romError(fmt.Errorf("reading ROM %s: %w", romPath, err))
	}

	m := machine.New()
	if err := m.LoadROM(romData); err != nil {
		return nil, romError(fmt.Errorf("loading ROM %s: %w", romPath, err))
	}

	snapData, err := os.ReadFile(snapshotPath)
	if err != nil {
		return nil, snapshotError(fmt.Errorf("reading snapshot %s: %w", snapshotPath, err))
	}
	if err := m.LoadSnapshot(snapData); err != nil {
		return nil, snapshotError(fmt.Errorf("loading snapshot %s: %w", snapshotPath, err))
	}
	return m, nil
}

func runSnapshot(snapshotPath, romPath string, frames int) error {
	m, err := loadMachine(snapshotPath, romPath)
	if err != nil {
		return err
	}

	totalT := 0
	for f := 0; f < frames; f++ {
		totalT += m.RunForFrame()
	}

	fmt.Printf("ran %d frames (%d T-states), PC=0x%04X SP=0x%04X AF=0x%04X\n",
		frames, totalT, m.CPU.Reg.PC(), m.CPU.Reg.SP(), m.CPU.Reg.AF())
	return nil
}

func isRomError(err error) bool {
	var se *stageError
	return errors.As(err, &se) && se.stage == "rom"
}

func isSnapshotError(err error) bool {
	var se *stageError
	return errors.As(err, &se) && se.stage == "snapshot"
}
