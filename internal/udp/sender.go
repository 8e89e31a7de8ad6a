// Package udp sends telemetry lines as single datagrams.
package udp

import (
	"fmt"
	"net"
	"time"
)

type udpConn interface {
	Write(p []byte) (int, error)
	SetWriteDeadline(t time.Time) error
	Close() error
}

type resolveFunc func(network, address string) (*net.UDPAddr, error)
type dialFunc func(network string, laddr, raddr *net.UDPAddr) (udpConn, error)

// Sender writes each payload to one fixed destination. The socket is
// connected once so every Send is a single write.
type Sender struct {
	dest    string
	conn    udpConn
	timeout time.Duration
	now     func() time.Time
}

// NewSender resolves dest and dials it. A positive timeout bounds every
// Send with a write deadline.
func NewSender(dest string, timeout time.Duration) (*Sender, error) {
	dial := func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return net.DialUDP(network, laddr, raddr)
	}
	s, err := newSender(dest, net.ResolveUDPAddr, dial)
	if err != nil {
		return nil, err
	}
	s.timeout = timeout
	return s, nil
}

func newSender(dest string, resolve resolveFunc, dial dialFunc) (*Sender, error) {
	addr, err := resolve("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("resolve dest: %w", err)
	}

	conn, err := dial("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial udp: %w", err)
	}

	return &Sender{
		dest: dest,
		conn: conn,
		now:  time.Now,
	}, nil
}

// Dest is the configured destination address.
func (s *Sender) Dest() string { return s.dest }

// Send writes payload as one datagram. Empty payloads are not sent.
func (s *Sender) Send(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	if s.timeout > 0 {
		if err := s.conn.SetWriteDeadline(s.now().Add(s.timeout)); err != nil {
			return fmt.Errorf("udp send: %w", err)
		}
	}
	if _, err := s.conn.Write(payload); err != nil {
		return fmt.Errorf("udp send: %w", err)
	}
	return nil
}

func (s *Sender) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
