package cli

import (
	"fmt"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SeamusWaldron/cuberender/internal/operation"
	"github.com/SeamusWaldron/cuberender/internal/scene"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	layerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	moveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	homeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	gridStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// opsTail is how many recent ops the terminal views show.
const opsTail = 24

// keyInput maps a terminal key press to the key and ctrl state the recorder
// expects. Terminals cannot report shift together with ctrl, so ctrl plus a
// face letter is passed on as the uppercase letter with ctrl held.
func keyInput(k tea.KeyMsg) (rune, bool, bool) {
	if k.Type == tea.KeyRunes && len(k.Runes) == 1 && !k.Alt {
		return k.Runes[0], false, true
	}

	s := k.String()
	if !strings.HasPrefix(s, "ctrl+") || len(s) != len("ctrl+")+1 {
		return 0, false, false
	}
	letter := unicode.ToUpper(rune(s[len(s)-1]))
	if _, ok := types.FaceFromLetter(letter); !ok {
		return 0, false, false
	}
	return letter, true, true
}

// renderOccupancy draws the three layers of the cube from top to bottom.
// Each cell shows the home slot of the cubie that sits there; displaced
// cubies are highlighted.
func renderOccupancy(snap operation.Snapshot) string {
	occ := snap.Occupants()

	layers := make([]string, 0, 3)
	for y := 2; y >= 0; y-- {
		var b strings.Builder
		b.WriteString(layerStyle.Render(layerName(y)))
		for z := 0; z < 3; z++ {
			b.WriteString("\n")
			for x := 0; x < 3; x++ {
				slot := scene.SlotAt(x, y, z)
				cell := fmt.Sprintf("%3d", occ[slot])
				if occ[slot] == slot {
					b.WriteString(homeStyle.Render(cell))
				} else {
					b.WriteString(moveStyle.Render(cell))
				}
			}
		}
		layers = append(layers, gridStyle.Render(b.String()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, layers...)
}

func layerName(y int) string {
	switch y {
	case 2:
		return "up"
	case 1:
		return "middle"
	default:
		return "down"
	}
}

// renderOps formats the last n ops.
func renderOps(ops []types.Op, n int) string {
	if len(ops) == 0 {
		return statusStyle.Render("(no ops)")
	}
	prefix := ""
	if len(ops) > n {
		ops = ops[len(ops)-n:]
		prefix = "... "
	}
	return prefix + moveStyle.Render(types.FormatOps(ops))
}

// displaced counts cubies away from their home slot.
func displaced(snap operation.Snapshot) int {
	n := 0
	for i, st := range snap {
		if st.Position != i {
			n++
		}
	}
	return n
}
