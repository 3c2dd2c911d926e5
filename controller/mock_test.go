package controller

import (
	"context"

	"github.com/calvinmclean/fiberalign/driver"
	"github.com/stretchr/testify/mock"
)

type mockDriver struct{ mock.Mock }

var _ driver.Driver = &mockDriver{}

func (m *mockDriver) Enumerate(ctx context.Context) ([]string, error) {
	ret := m.Called(ctx)
	serials, _ := ret.Get(0).([]string)
	return serials, ret.Error(1)
}

func (m *mockDriver) Open(ctx context.Context, serial string) (driver.Device, error) {
	ret := m.Called(ctx, serial)
	dev, _ := ret.Get(0).(driver.Device)
	return dev, ret.Error(1)
}

type mockDevice struct {
	mock.Mock
	serial string
}

var _ driver.Device = &mockDevice{}

func (m *mockDevice) Serial() string              { return m.serial }
func (m *mockDevice) Open() error                 { return m.Called().Error(0) }
func (m *mockDevice) Close() error                { return m.Called().Error(0) }
func (m *mockDevice) Enable() error               { return m.Called().Error(0) }
func (m *mockDevice) Disable() error              { return m.Called().Error(0) }
func (m *mockDevice) IncreaseVoltage() error      { return m.Called().Error(0) }
func (m *mockDevice) DecreaseVoltage() error      { return m.Called().Error(0) }
func (m *mockDevice) SetVoltage(v float64) error  { return m.Called(v).Error(0) }
func (m *mockDevice) SetStepSize(v float64) error { return m.Called(v).Error(0) }
func (m *mockDevice) StepSize() float64           { return m.Called().Get(0).(float64) }

func (m *mockDevice) IsEnabled() (bool, error) {
	ret := m.Called()
	return ret.Bool(0), ret.Error(1)
}

func (m *mockDevice) Voltage() (float64, error) {
	ret := m.Called()
	return ret.Get(0).(float64), ret.Error(1)
}

// connectedMock returns a driver with one mock device "A" that expects the calls made by Connect
func connectedMock() (*mockDriver, *mockDevice) {
	dev := &mockDevice{serial: "A"}
	dev.On("Voltage").Return(3.0, nil).Maybe()
	dev.On("StepSize").Return(1.0).Maybe()
	dev.On("IsEnabled").Return(false, nil).Maybe()

	drv := &mockDriver{}
	drv.On("Enumerate", mock.Anything).Return([]string{"A"}, nil).Once()
	drv.On("Open", mock.Anything, "A").Return(dev, nil).Once()
	return drv, dev
}
