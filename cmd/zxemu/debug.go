package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/oisee/gozxcore/internal/machine"
)

// debugModel is the bubbletea model for `zxemu debug`: a register/flag
// panel plus a scrolling disassembly-ish memory page view, stepped one
// instruction (or one frame) at a time.
type debugModel struct {
	m     *machine.Machine
	lastT int
}

func (d debugModel) Init() tea.Cmd { return nil }

func (d debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	switch keyMsg.String() {
	case "q", "ctrl+c":
		return d, tea.Quit
	case " ", "s":
		d.lastT = d.m.Step()
	case "f":
		d.lastT = d.m.RunForFrame()
	}
	return d, nil
}

func (d debugModel) registers() string {
	reg := d.m.CPU.Reg
	return fmt.Sprintf(`
 PC: %04X   SP: %04X
 AF: %04X   BC: %04X
 DE: %04X   HL: %04X
 IX: %04X   IY: %04X
  I: %02X    R: %02X
IM: %d  IFF1: %v  IFF2: %v  HALT: %v

last step: %d T-states
`,
		reg.PC(), reg.SP(),
		reg.AF(), reg.BC(),
		reg.DE(), reg.HL(),
		reg.IX(), reg.IY(),
		reg.I(), reg.R(),
		reg.IM(), reg.IFF1(), reg.IFF2(), reg.Halted(),
		d.lastT,
	)
}

func (d debugModel) memoryPage() string {
	pc := d.m.CPU.Reg.PC()
	start := pc &^ 0x000F
	lines := make([]string, 0, 8)
	for row := 0; row < 8; row++ {
		base := start + uint16(row*16)
		line := fmt.Sprintf("%04X | ", base)
		for i := 0; i < 16; i++ {
			addr := base + uint16(i)
			b := d.m.Bus.Read8(addr)
			if addr == pc {
				line += fmt.Sprintf("[%02X]", b)
			} else {
				line += fmt.Sprintf(" %02X ", b)
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (d debugModel) View() string {
	help := "space/s: step   f: run frame   q: quit"
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, d.memoryPage(), d.registers()),
		"",
		help,
		"",
		spew.Sdump(d.m.Bus.RAM()[0x5800:0x5804]),
	)
}

func runDebug(snapshotPath, romPath string) error {
	m, err := loadMachine(snapshotPath, romPath)
	if err != nil {
		return err
	}
	p := tea.NewProgram(debugModel{m: m})
	_, err = p.Run()
	return err
}
