// Source: device.go
//
// Hand-authored in the shape this command would produce:
//  mockgen -source=device.go -destination=mock_device.go -package device
//
// This follows the same convention
// aligator-GoFAT documents at file.go's "Generated mock using mockgen"
// comment (no file_mock.go ships in that repo either, so this follows the
// documented command rather than a checked-in generated artifact).

package device

import (
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"
)

// MockDevice is a mock of the Device interface.
type MockDevice struct {
	ctrl     *gomock.Controller
	recorder *MockDeviceMockRecorder
}

// MockDeviceMockRecorder is the mock recorder for MockDevice.
type MockDeviceMockRecorder struct {
	mock *MockDevice
}

// NewMockDevice creates a new mock instance.
func NewMockDevice(ctrl *gomock.Controller) *MockDevice {
	mock := &MockDevice{ctrl: ctrl}
	mock.recorder = &MockDeviceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockDevice) EXPECT() *MockDeviceMockRecorder {
	return m.recorder
}

// SectorSize mocks base method.
func (m *MockDevice) SectorSize() uint32 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SectorSize")
	ret0, _ := ret[0].(uint32)
	return ret0
}

// SectorSize indicates an expected call of SectorSize.
func (mr *MockDeviceMockRecorder) SectorSize() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SectorSize", reflect.TypeOf((*MockDevice)(nil).SectorSize))
}

// SetSectorSize mocks base method.
func (m *MockDevice) SetSectorSize(n uint32) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "SetSectorSize", n)
}

// SetSectorSize indicates an expected call of SetSectorSize.
func (mr *MockDeviceMockRecorder) SetSectorSize(n interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetSectorSize", reflect.TypeOf((*MockDevice)(nil).SetSectorSize), n)
}

// LengthSectors mocks base method.
func (m *MockDevice) LengthSectors() (uint64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LengthSectors")
	ret0, _ := ret[0].(uint64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LengthSectors indicates an expected call of LengthSectors.
func (mr *MockDeviceMockRecorder) LengthSectors() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LengthSectors", reflect.TypeOf((*MockDevice)(nil).LengthSectors))
}

// ReadSectors mocks base method.
func (m *MockDevice) ReadSectors(start uint64, count uint32) ([]byte, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadSectors", start, count)
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReadSectors indicates an expected call of ReadSectors.
func (mr *MockDeviceMockRecorder) ReadSectors(start, count interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadSectors", reflect.TypeOf((*MockDevice)(nil).ReadSectors), start, count)
}

// WriteSectors mocks base method.
func (m *MockDevice) WriteSectors(start uint64, data []byte) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteSectors", start, data)
	ret0, _ := ret[0].(error)
	return ret0
}

// WriteSectors indicates an expected call of WriteSectors.
func (mr *MockDeviceMockRecorder) WriteSectors(start, data interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteSectors", reflect.TypeOf((*MockDevice)(nil).WriteSectors), start, data)
}

// ReadBytesAt mocks base method.
func (m *MockDevice) ReadBytesAt(byteOffset uint64, size int) ([]byte, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadBytesAt", byteOffset, size)
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReadBytesAt indicates an expected call of ReadBytesAt.
func (mr *MockDeviceMockRecorder) ReadBytesAt(byteOffset, size interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadBytesAt", reflect.TypeOf((*MockDevice)(nil).ReadBytesAt), byteOffset, size)
}

// Sync mocks base method.
func (m *MockDevice) Sync() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Sync")
	ret0, _ := ret[0].(error)
	return ret0
}

// Sync indicates an expected call of Sync.
func (mr *MockDeviceMockRecorder) Sync() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Sync", reflect.TypeOf((*MockDevice)(nil).Sync))
}

// Close mocks base method.
func (m *MockDevice) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockDeviceMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockDevice)(nil).Close))
}
