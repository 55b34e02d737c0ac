package mocks

import (
	"net"

	"github.com/stretchr/testify/mock"
)

// SecurityLayer is a mock type for the model.SecurityLayer interface.
type SecurityLayer struct {
	mock.Mock
}

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	var ln net.Listener
	if v := args.Get(0); v != nil {
		ln = v.(net.Listener)
	}
	return ln, args.Error(1)
}

// NewSecurityLayer creates a SecurityLayer mock whose expectations are
// asserted when the test ends.
func NewSecurityLayer(t interface {
	mock.TestingT
	Cleanup(func())
}) *SecurityLayer {
	m := &SecurityLayer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
