// Package transport provides the length-prefixed TCP framing used to carry
// ProtocolMessage envelopes between peers, grounded on the same
// length-prefix discipline devp2p-style transports use: each frame is a
// 4-byte big-endian length followed by that many bytes of payload.
package transport

import (
	"encoding/binary"
	"io"
	"net"
	"time"

	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/p2p"
)

const (
	lengthPrefixSize = 4
	dialTimeout      = 10 * time.Second
	ioTimeout        = 30 * time.Second
)

// Conn wraps a net.Conn with framed ProtocolMessage send/receive.
type Conn struct {
	nc net.Conn
}

func NewConn(nc net.Conn) *Conn {
	return &Conn{nc: nc}
}

// Dial opens a TCP connection to addr, grounded on a short connect timeout
// so a dead peer doesn't stall the caller's dial loop.
func Dial(addr string) (*Conn, error) {
	nc, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Network, err)
	}
	return &Conn{nc: nc}, nil
}

// Listen opens a TCP listener on addr.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Network, err)
	}
	return ln, nil
}

// Send frames and writes msg, rejecting it up front if it exceeds the wire
// size ceiling (Encode already enforces this, this is belt-and-suspenders
// against a caller bypassing it).
func (c *Conn) Send(msg *p2p.ProtocolMessage) error {
	body, err := msg.Encode()
	if err != nil {
		return err
	}
	if len(body) > p2p.MaxMessageSize {
		return beaconerrors.New(beaconerrors.Network, "message too large")
	}
	c.nc.SetWriteDeadline(time.Now().Add(ioTimeout))
	var hdr [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(body)))
	if _, err := c.nc.Write(hdr[:]); err != nil {
		return beaconerrors.Wrap(beaconerrors.Network, err)
	}
	if _, err := c.nc.Write(body); err != nil {
		return beaconerrors.Wrap(beaconerrors.Network, err)
	}
	return nil
}

// Receive reads one framed message, rejecting any declared length over the
// wire size ceiling before allocating a buffer for it.
func (c *Conn) Receive() (*p2p.ProtocolMessage, error) {
	c.nc.SetReadDeadline(time.Now().Add(ioTimeout))
	var hdr [lengthPrefixSize]byte
	if _, err := io.ReadFull(c.nc, hdr[:]); err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Network, err)
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > p2p.MaxMessageSize {
		return nil, beaconerrors.New(beaconerrors.Network, "message too large")
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(c.nc, body); err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Network, err)
	}
	return p2p.DecodeProtocolMessage(body)
}

func (c *Conn) Close() error { return c.nc.Close() }

func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }
