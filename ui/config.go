package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/calvinmclean/fiberalign/controller"
)

// ConfigWindow asks for the driver settings before the main window opens. Values are remembered in the
// app Preferences; anything never saved falls back to what cfg already holds
type ConfigWindow struct {
	app      fyne.App
	logger   *slog.Logger
	submit   *widget.Button
	OnSubmit func(*controller.Controller)
}

func NewConfigWindow(app fyne.App, logger *slog.Logger) *ConfigWindow {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWindow{
		app:    app,
		logger: logger,
	}
}

func (cw *ConfigWindow) loadConfigFromPreferences(cfg *controller.Config) {
	prefs := cw.app.Preferences()
	cfg.Driver = prefs.StringWithFallback("driver", cfg.Driver)
	cfg.BaudRate = prefs.StringWithFallback("baudRate", cfg.BaudRate)
	cfg.MaxVoltage = prefs.StringWithFallback("maxVoltage", cfg.MaxVoltage)
	cfg.StepSize = prefs.StringWithFallback("stepSize", cfg.StepSize)
	cfg.ReadTimeout = prefs.StringWithFallback("readTimeout", cfg.ReadTimeout)
	cfg.SimSerials = prefs.StringWithFallback("simSerials", cfg.SimSerials)
}

func (cw *ConfigWindow) saveConfigToPreferences(cfg *controller.Config) {
	prefs := cw.app.Preferences()
	prefs.SetString("driver", cfg.Driver)
	prefs.SetString("baudRate", cfg.BaudRate)
	prefs.SetString("maxVoltage", cfg.MaxVoltage)
	prefs.SetString("stepSize", cfg.StepSize)
	prefs.SetString("readTimeout", cfg.ReadTimeout)
	prefs.SetString("simSerials", cfg.SimSerials)
}

func (cw *ConfigWindow) Show(cfg *controller.Config) {
	window := cw.app.NewWindow("Fiber Alignment - Configuration")
	window.Resize(fyne.NewSize(400, 250))
	window.SetCloseIntercept(func() {
		// Treat window close as cancel
		window.Close()
		cw.app.Quit()
	})
	window.Show()

	cw.loadConfigFromPreferences(cfg)

	driverSelect := widget.NewSelect([]string{controller.DriverAPT, controller.DriverSim}, nil)
	driverSelect.Bind(binding.BindString(&cfg.Driver))

	baudRateEntry := widget.NewEntry()
	baudRateEntry.Bind(binding.BindString(&cfg.BaudRate))

	maxVoltageEntry := widget.NewEntry()
	maxVoltageEntry.Bind(binding.BindString(&cfg.MaxVoltage))

	stepEntry := widget.NewEntry()
	stepEntry.Bind(binding.BindString(&cfg.StepSize))

	readTimeoutEntry := widget.NewEntry()
	readTimeoutEntry.Bind(binding.BindString(&cfg.ReadTimeout))

	simSerialsEntry := widget.NewEntry()
	simSerialsEntry.Bind(binding.BindString(&cfg.SimSerials))

	cw.submit = widget.NewButton("Submit", func() {
		drv, err := cfg.NewDriver(cw.logger)
		if err != nil {
			// let the user fix the field
			dialog.ShowError(err, window)
			return
		}
		cw.saveConfigToPreferences(cfg)
		window.Close()
		cw.OnSubmit(controller.New(drv, cw.logger))
	})
	cw.submit.Disable()

	validateForm := func() {
		allFieldsValid := cfg.Driver != "" &&
			cfg.BaudRate != "" &&
			cfg.MaxVoltage != "" &&
			cfg.StepSize != "" &&
			cfg.ReadTimeout != "" &&
			(cfg.Driver != controller.DriverSim || cfg.SimSerials != "")

		setEnabled(cw.submit, allFieldsValid)
	}

	driverSelect.OnChanged = func(_ string) { validateForm() }
	baudRateEntry.OnChanged = func(_ string) { validateForm() }
	maxVoltageEntry.OnChanged = func(_ string) { validateForm() }
	stepEntry.OnChanged = func(_ string) { validateForm() }
	readTimeoutEntry.OnChanged = func(_ string) { validateForm() }
	simSerialsEntry.OnChanged = func(_ string) { validateForm() }

	validateForm()

	form := container.NewVBox(
		widget.NewCard("Configuration", "", container.NewVBox(
			container.NewGridWithColumns(2,
				widget.NewLabel("Driver:"),
				driverSelect,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Baud Rate:"),
				baudRateEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Max Voltage:"),
				maxVoltageEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Step Size:"),
				stepEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Read Timeout:"),
				readTimeoutEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Simulated Serials:"),
				simSerialsEntry,
			),
		)),
		container.NewHBox(
			widget.NewButton("Cancel", func() {
				window.Close()
				cw.app.Quit()
			}),
			cw.submit,
		),
	)

	window.SetContent(form)
}
