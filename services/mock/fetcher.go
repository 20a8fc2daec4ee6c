package mock

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockObjectFetcher is a mock of ObjectFetcher interface.
type MockObjectFetcher struct {
	ctrl     *gomock.Controller
	recorder *MockObjectFetcherMockRecorder
	isgomock struct{}
}

// MockObjectFetcherMockRecorder is the mock recorder for MockObjectFetcher.
type MockObjectFetcherMockRecorder struct {
	mock *MockObjectFetcher
}

// NewMockObjectFetcher creates a new mock instance.
func NewMockObjectFetcher(ctrl *gomock.Controller) *MockObjectFetcher {
	mock := &MockObjectFetcher{ctrl: ctrl}
	mock.recorder = &MockObjectFetcherMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockObjectFetcher) EXPECT() *MockObjectFetcherMockRecorder {
	return m.recorder
}

// FetchObject mocks base method.
func (m *MockObjectFetcher) FetchObject(ctx context.Context, key string) ([]byte, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FetchObject", ctx, key)
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FetchObject indicates an expected call of FetchObject.
func (mr *MockObjectFetcherMockRecorder) FetchObject(ctx, key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FetchObject", reflect.TypeOf((*MockObjectFetcher)(nil).FetchObject), ctx, key)
}
