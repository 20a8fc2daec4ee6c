package mock

import (
	reflect "reflect"

	services "landmark-quest-system/services"

	gomock "go.uber.org/mock/gomock"
)

// MockObservationListener is a mock of ObservationListener interface.
type MockObservationListener struct {
	ctrl     *gomock.Controller
	recorder *MockObservationListenerMockRecorder
	isgomock struct{}
}

// MockObservationListenerMockRecorder is the mock recorder for MockObservationListener.
type MockObservationListenerMockRecorder struct {
	mock *MockObservationListener
}

// NewMockObservationListener creates a new mock instance.
func NewMockObservationListener(ctrl *gomock.Controller) *MockObservationListener {
	mock := &MockObservationListener{ctrl: ctrl}
	mock.recorder = &MockObservationListenerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockObservationListener) EXPECT() *MockObservationListenerMockRecorder {
	return m.recorder
}

// LandmarksObserved mocks base method.
func (m *MockObservationListener) LandmarksObserved(evt services.LandmarksObserved) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "LandmarksObserved", evt)
}

// LandmarksObserved indicates an expected call of LandmarksObserved.
func (mr *MockObservationListenerMockRecorder) LandmarksObserved(evt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LandmarksObserved", reflect.TypeOf((*MockObservationListener)(nil).LandmarksObserved), evt)
}

// MockCaptureListener is a mock of CaptureListener interface.
type MockCaptureListener struct {
	ctrl     *gomock.Controller
	recorder *MockCaptureListenerMockRecorder
	isgomock struct{}
}

// MockCaptureListenerMockRecorder is the mock recorder for MockCaptureListener.
type MockCaptureListenerMockRecorder struct {
	mock *MockCaptureListener
}

// NewMockCaptureListener creates a new mock instance.
func NewMockCaptureListener(ctrl *gomock.Controller) *MockCaptureListener {
	mock := &MockCaptureListener{ctrl: ctrl}
	mock.recorder = &MockCaptureListenerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCaptureListener) EXPECT() *MockCaptureListenerMockRecorder {
	return m.recorder
}

// LandmarkCaptured mocks base method.
func (m *MockCaptureListener) LandmarkCaptured(evt services.LandmarkCaptured) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "LandmarkCaptured", evt)
}

// LandmarkCaptured indicates an expected call of LandmarkCaptured.
func (mr *MockCaptureListenerMockRecorder) LandmarkCaptured(evt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LandmarkCaptured", reflect.TypeOf((*MockCaptureListener)(nil).LandmarkCaptured), evt)
}
