package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/calvinmclean/fiberalign/controller"
)

// noneOption is the first serial select option and unbinds the axis
const noneOption = "(none)"

// axisPanel is one row of a stage card: serial select, voltage entry, and step buttons
type axisPanel struct {
	axis   *controller.Axis
	report func(error)

	serialSelect *widget.Select
	voltageEntry *widget.Entry
	minusButton  *widget.Button
	plusButton   *widget.Button

	// syncing is set while the widgets are updated from the axis so their callbacks do not write back
	syncing bool
}

func newAxisPanel(axis *controller.Axis, report func(error)) *axisPanel {
	p := &axisPanel{
		axis:   axis,
		report: report,
	}

	p.serialSelect = widget.NewSelect(nil, func(serial string) {
		if p.syncing {
			return
		}
		if serial == noneOption {
			serial = ""
		}
		p.run(func() error { return p.axis.Bind(serial) })
	})
	p.serialSelect.PlaceHolder = noneOption

	p.voltageEntry = widget.NewEntry()
	p.voltageEntry.SetPlaceHolder("V")
	p.voltageEntry.OnSubmitted = func(s string) {
		p.run(func() error { return p.axis.SetVoltage(s) })
	}

	p.minusButton = widget.NewButton("-", p.Decrease)
	p.plusButton = widget.NewButton("+", p.Increase)

	return p
}

func (p *axisPanel) Increase() {
	p.run(p.axis.Increase)
}

func (p *axisPanel) Decrease() {
	p.run(p.axis.Decrease)
}

// run calls f and shows the result. A failure leaves the last reading in the entry
func (p *axisPanel) run(f func() error) {
	err := f()
	p.refresh()
	p.report(err)
}

// setSerials replaces the select options with the connected serial numbers. With nothing connected there is
// nothing to choose, not even noneOption
func (p *axisPanel) setSerials(serials []string) {
	p.syncing = true
	defer func() { p.syncing = false }()

	var options []string
	if len(serials) > 0 {
		options = append([]string{noneOption}, serials...)
	}
	p.serialSelect.SetOptions(options)
	p.refresh()
}

// refresh copies the binding and reading from the axis into the widgets
func (p *axisPanel) refresh() {
	p.syncing = true
	defer func() { p.syncing = false }()

	serial := p.axis.Serial()
	if serial == "" {
		p.serialSelect.ClearSelected()
	} else if p.serialSelect.Selected != serial {
		p.serialSelect.SetSelected(serial)
	}
	p.voltageEntry.SetText(p.axis.Reading())
}

func (p *axisPanel) content() fyne.CanvasObject {
	return container.NewGridWithColumns(5,
		widget.NewLabel(p.axis.Name().String()),
		p.serialSelect,
		p.minusButton,
		p.voltageEntry,
		p.plusButton,
	)
}
