package ui

import (
	"context"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/calvinmclean/fiberalign/controller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWindowSubmit(t *testing.T) {
	app := test.NewTempApp(t)
	app.Preferences().SetString("driver", controller.DriverSim)
	app.Preferences().SetString("simSerials", "S2,S1")

	var got *controller.Controller
	cw := NewConfigWindow(app, discard)
	cw.OnSubmit = func(c *controller.Controller) {
		got = c
	}

	cfg := controller.DefaultConfig()
	cw.Show(&cfg)

	assert.Equal(t, controller.DriverSim, cfg.Driver)
	assert.Equal(t, "75", cfg.MaxVoltage, "unsaved fields fall back to the given config")
	require.False(t, cw.submit.Disabled())

	test.Tap(cw.submit)
	require.NotNil(t, got)

	serials, err := got.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, serials)

	assert.Equal(t, "75", app.Preferences().String("maxVoltage"), "submit saves every field")
}

func TestConfigWindowInvalid(t *testing.T) {
	app := test.NewTempApp(t)
	app.Preferences().SetString("driver", controller.DriverSim)
	app.Preferences().SetString("maxVoltage", "lots")

	called := false
	cw := NewConfigWindow(app, discard)
	cw.OnSubmit = func(*controller.Controller) {
		called = true
	}

	cfg := controller.DefaultConfig()
	cw.Show(&cfg)
	test.Tap(cw.submit)

	assert.False(t, called)
	assert.Empty(t, app.Preferences().String("simSerials"), "nothing is saved until the config is valid")
}

func TestConfigWindowRequiresSimSerials(t *testing.T) {
	app := test.NewTempApp(t)
	app.Preferences().SetString("driver", controller.DriverSim)
	app.Preferences().SetString("simSerials", "")

	cw := NewConfigWindow(app, discard)
	cfg := controller.DefaultConfig()
	cw.Show(&cfg)

	assert.True(t, cw.submit.Disabled())
}
