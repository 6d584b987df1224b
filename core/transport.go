package core

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// pendingAck tracks one in-flight, not-yet-acknowledged packet.
type pendingAck struct {
	packet  Packet
	addr    *net.UDPAddr
	retries int
	sentAt  time.Time
}

// Transport is the reliable datagram transport: a UDP socket plus the
// pending-ack bookkeeping that turns "best effort" into "acked or
// eventually given up on, bounded by MaxRetries". Grounded on
// core/network.go's non-fatal-error convention, built on a raw
// net.PacketConn rather than a stream multiplexer since the ack/retry
// contract here is shaped around individual datagrams.
type Transport struct {
	conn *net.UDPConn

	mu      sync.Mutex
	pending map[uint32]*pendingAck
}

// NewTransport binds a UDP socket at addr (host:port, or ":0" for an
// ephemeral port).
func NewTransport(addr string) (*Transport, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("core: resolve bind addr %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("core: bind udp %q: %w", addr, err)
	}
	return &Transport{conn: conn, pending: make(map[uint32]*pendingAck)}, nil
}

// LocalAddr returns the socket's bound address.
func (t *Transport) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}

// Close releases the underlying socket.
func (t *Transport) Close() error {
	return t.conn.Close()
}

// Send encodes and transmits p to addr. Non-Ack packets are registered in
// the pending-ack map with retry count zero; an Ack is never itself
// tracked (no infinite ack-of-ack regress).
func (t *Transport) Send(p Packet, addr *net.UDPAddr) {
	if err := t.write(p, addr); err != nil {
		log.WithError(err).Warn("transport: send failed")
	}
	if p.Type == PacketAck {
		return
	}
	t.mu.Lock()
	t.pending[p.ID] = &pendingAck{packet: p, addr: addr, sentAt: time.Now()}
	t.mu.Unlock()
}

// SendUntracked writes p to addr without registering it in the pending-ack
// map. Used by Client, which drives its own request/reply correlation and
// retry ceiling rather than the node engine's generic sweep.
func (t *Transport) SendUntracked(p Packet, addr *net.UDPAddr) {
	if err := t.write(p, addr); err != nil {
		log.WithError(err).Warn("transport: send failed")
	}
}

func (t *Transport) write(p Packet, addr *net.UDPAddr) error {
	_, err := t.conn.WriteToUDP(EncodePacket(p), addr)
	return err
}

// Receive blocks for up to timeout waiting for one datagram. ok is false
// on timeout, a socket error (logged and treated as transient), or a
// malformed frame (dropped silently) — the caller cannot and need not
// distinguish these cases.
func (t *Transport) Receive(timeout time.Duration) (p Packet, addr *net.UDPAddr, ok bool) {
	buf := make([]byte, PacketBufferSize)
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		log.WithError(err).Warn("transport: set read deadline failed")
		return Packet{}, nil, false
	}
	n, src, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, isNet := err.(net.Error); isNet && ne.Timeout() {
			return Packet{}, nil, false
		}
		log.WithError(err).Warn("transport: receive failed")
		return Packet{}, nil, false
	}
	p, ok = DecodePacket(buf[:n])
	if !ok {
		log.Debug("transport: dropped malformed frame")
		return Packet{}, nil, false
	}
	return p, src, true
}

// AckReceived removes id from the pending-ack map, as if it had been
// acknowledged by the peer.
func (t *Transport) AckReceived(id uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

// Sweep resends every pending packet older than AckTimeout, dropping (and
// logging) any that has exhausted MaxRetries. Call once per engine tick.
func (t *Transport) Sweep() {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, e := range t.pending {
		if now.Sub(e.sentAt) < AckTimeout {
			continue
		}
		if e.retries >= MaxRetries {
			delete(t.pending, id)
			log.WithFields(logrus.Fields{"packet_id": id, "type": e.packet.Type.String()}).
				Error("transport: retries exhausted, dropping packet")
			continue
		}
		e.retries++
		e.sentAt = now
		if err := t.write(e.packet, e.addr); err != nil {
			log.WithError(err).Warn("transport: retransmit failed")
		}
	}
}

// PendingCount reports how many packets currently await acknowledgement.
// Used by status/metrics reporting.
func (t *Transport) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
