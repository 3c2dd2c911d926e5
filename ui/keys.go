package ui

import (
	"fyne.io/fyne/v2"
	"github.com/calvinmclean/fiberalign"
)

type direction int

const (
	directionDown direction = iota
	directionUp
)

// keyAction is the axis and direction a key steps
type keyAction struct {
	stage     fiberalign.StageName
	axis      fiberalign.AxisName
	direction direction
}

// keyBindings puts the input stage under the left hand and the output stage under the right.
// W/S and I/K move Z, A/D and J/L move X, Q/E and U/O move Y
var keyBindings = map[fyne.KeyName]keyAction{
	fyne.KeyW: {fiberalign.StageInput, fiberalign.AxisZ, directionUp},
	fyne.KeyS: {fiberalign.StageInput, fiberalign.AxisZ, directionDown},
	fyne.KeyA: {fiberalign.StageInput, fiberalign.AxisX, directionDown},
	fyne.KeyD: {fiberalign.StageInput, fiberalign.AxisX, directionUp},
	fyne.KeyQ: {fiberalign.StageInput, fiberalign.AxisY, directionDown},
	fyne.KeyE: {fiberalign.StageInput, fiberalign.AxisY, directionUp},
	fyne.KeyI: {fiberalign.StageOutput, fiberalign.AxisZ, directionUp},
	fyne.KeyK: {fiberalign.StageOutput, fiberalign.AxisZ, directionDown},
	fyne.KeyJ: {fiberalign.StageOutput, fiberalign.AxisX, directionDown},
	fyne.KeyL: {fiberalign.StageOutput, fiberalign.AxisX, directionUp},
	fyne.KeyU: {fiberalign.StageOutput, fiberalign.AxisY, directionDown},
	fyne.KeyO: {fiberalign.StageOutput, fiberalign.AxisY, directionUp},
}

// handleKey runs the key binding for ev. Escape quits
func (ui *AlignUI) handleKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyEscape {
		ui.app.Quit()
		return
	}

	action, ok := keyBindings[ev.Name]
	if !ok {
		return
	}

	panel := ui.panel(action.stage, action.axis)
	switch action.direction {
	case directionUp:
		panel.Increase()
	case directionDown:
		panel.Decrease()
	}
}
