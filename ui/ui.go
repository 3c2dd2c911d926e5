package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/calvinmclean/fiberalign"
	"github.com/calvinmclean/fiberalign/controller"
)

const statusReady = "Ready"

// AlignUI is the main alignment window. Every callback runs on the fyne main goroutine, which is the only
// goroutine that touches the Controller
type AlignUI struct {
	app    fyne.App
	ctrl   *controller.Controller
	logger *slog.Logger
	ctx    context.Context

	window fyne.Window
	panels map[fiberalign.StageName][]*axisPanel

	connectButton    *widget.Button
	disconnectButton *widget.Button
	enableButton     *widget.Button
	disableButton    *widget.Button
	stepEntry        *widget.Entry
	allEntry         *widget.Entry
	status           *widget.Label
}

// NewAlignUI builds the main window for the controller without showing it
func NewAlignUI(app fyne.App, ctrl *controller.Controller, logger *slog.Logger) *AlignUI {
	if logger == nil {
		logger = slog.Default()
	}
	ui := &AlignUI{
		app:    app,
		ctrl:   ctrl,
		logger: logger,
		ctx:    context.Background(),
		panels: map[fiberalign.StageName][]*axisPanel{},
		status: widget.NewLabel(statusReady),
	}

	ui.window = app.NewWindow("Fiber Alignment")
	ui.window.SetContent(ui.createContent())
	ui.window.Canvas().SetOnTypedKey(ui.handleKey)
	ui.window.SetOnClosed(ui.close)
	ui.window.Resize(fyne.NewSize(900, 300))
	ui.refresh()

	return ui
}

// Window returns the main window
func (ui *AlignUI) Window() fyne.Window {
	return ui.window
}

// Show displays the window and returns when it is closed or ctx is done. The app must already be running
func (ui *AlignUI) Show(ctx context.Context) {
	ui.ctx = ctx
	ui.window.Show()

	go func() {
		<-ctx.Done()
		fyne.Do(func() {
			ui.app.Quit()
		})
	}()
}

func (ui *AlignUI) close() {
	err := ui.ctrl.Disconnect()
	if err != nil {
		ui.logger.Error("error disconnecting on close", "error", err)
	}
}

func (ui *AlignUI) createContent() fyne.CanvasObject {
	stageCards := container.NewGridWithColumns(2)
	for _, stage := range ui.ctrl.Stages() {
		rows := container.NewVBox()
		for _, axis := range stage.Axes() {
			panel := newAxisPanel(axis, ui.report)
			ui.panels[stage.Name] = append(ui.panels[stage.Name], panel)
			rows.Add(panel.content())
		}
		stageCards.Add(widget.NewCard(stage.Name.String()+" Stage", "", rows))
	}

	ui.connectButton = widget.NewButton("Connect", ui.connect)
	ui.disconnectButton = widget.NewButton("Disconnect", ui.disconnect)
	ui.enableButton = widget.NewButton("Enable", ui.enable)
	ui.disableButton = widget.NewButton("Disable", ui.disable)

	ui.stepEntry = widget.NewEntry()
	ui.stepEntry.OnSubmitted = ui.setStep
	ui.allEntry = widget.NewEntry()
	ui.allEntry.OnSubmitted = ui.setAll

	controls := container.NewHBox(
		widget.NewCard("Connection", "", container.NewHBox(ui.connectButton, ui.disconnectButton)),
		widget.NewCard("Output", "", container.NewHBox(ui.enableButton, ui.disableButton)),
		layout.NewSpacer(),
		container.NewGridWithColumns(2,
			widget.NewLabel("Step Size:"),
			ui.stepEntry,
			widget.NewLabel("All Voltages:"),
			ui.allEntry,
		),
	)

	return container.NewBorder(nil, ui.status, nil, nil,
		container.NewVBox(stageCards, controls),
	)
}

func (ui *AlignUI) panel(stage fiberalign.StageName, axis fiberalign.AxisName) *axisPanel {
	for _, p := range ui.panels[stage] {
		if p.axis.Name() == axis {
			return p
		}
	}
	return nil
}

func (ui *AlignUI) connect() {
	serials, err := ui.ctrl.Connect(ui.ctx)
	ui.refresh()
	if err != nil {
		ui.report(err)
		return
	}
	ui.setStatus(fmt.Sprintf("Connected: %s", strings.Join(serials, ", ")))
}

func (ui *AlignUI) disconnect() {
	err := ui.ctrl.Disconnect()
	ui.stepEntry.SetText("")
	ui.allEntry.SetText("")
	ui.refresh()
	if err != nil {
		ui.report(err)
		return
	}
	ui.setStatus("Disconnected")
}

func (ui *AlignUI) enable() {
	err := ui.ctrl.EnableAll()
	ui.refresh()
	if err != nil {
		ui.report(err)
		return
	}
	ui.setStatus("Enabled")
}

func (ui *AlignUI) disable() {
	err := ui.ctrl.DisableAll()
	ui.refresh()
	if err != nil {
		ui.report(err)
		return
	}
	ui.setStatus("Disabled")
}

func (ui *AlignUI) setStep(s string) {
	err := ui.ctrl.SetGlobalStep(s)
	ui.refresh()
	ui.report(err)
}

func (ui *AlignUI) setAll(s string) {
	err := ui.ctrl.SetGlobalVoltage(s)
	ui.refresh()
	ui.report(err)
}

// report shows err in the status bar. Success leaves the current status alone
func (ui *AlignUI) report(err error) {
	if err == nil {
		return
	}
	ui.logger.Warn("operation failed", "error", err)
	ui.setStatus(err.Error())
}

func (ui *AlignUI) setStatus(msg string) {
	// multi-device errors are joined with newlines
	ui.status.SetText(strings.ReplaceAll(msg, "\n", "; "))
}

// refresh copies the controller state into every widget
func (ui *AlignUI) refresh() {
	serials := ui.ctrl.Serials()
	for _, panels := range ui.panels {
		for _, p := range panels {
			p.setSerials(serials)
		}
	}

	if ui.ctrl.ConnectionState() == fiberalign.ConnectionStateConnected {
		ui.connectButton.Disable()
		ui.disconnectButton.Enable()
	} else {
		ui.connectButton.Enable()
		ui.disconnectButton.Disable()
	}

	setEnabled(ui.enableButton, ui.ctrl.EnableState().CanEnable())
	setEnabled(ui.disableButton, ui.ctrl.EnableState().CanDisable())

	if ui.ctrl.StepText() != "" || ui.ctrl.ConnectionState() != fiberalign.ConnectionStateConnected {
		ui.stepEntry.SetText(ui.ctrl.StepText())
	}
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}
