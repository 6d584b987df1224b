package core

import (
	"fmt"
	"net"
	"time"
)

// Client is a thin request/reply helper for talking to a single remote
// node over the reliable datagram protocol. It owns its own UDP socket
// (via Transport) but, unlike the node engine, drives its own retry loop
// rather than relying on Transport's background sweep.
type Client struct {
	id        uint16
	transport *Transport
	remote    *net.UDPAddr
	timeout   time.Duration
}

// NewClient binds an ephemeral local socket and targets remoteAddr
// (host:port). timeout bounds how long each attempt waits for a reply
// before retrying.
func NewClient(id uint16, remoteAddr string, timeout time.Duration) (*Client, error) {
	tr, err := NewTransport(":0")
	if err != nil {
		return nil, err
	}
	raddr, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		tr.Close()
		return nil, fmt.Errorf("core: resolve remote addr %q: %w", remoteAddr, err)
	}
	return &Client{id: id, transport: tr, remote: raddr, timeout: timeout}, nil
}

// Close releases the client's socket.
func (c *Client) Close() error { return c.transport.Close() }

// SetData asks the remote node to store data under name, retrying up to
// MaxRetries+1 total attempts until an Ack arrives. It reports whether an
// Ack was ever observed.
func (c *Client) SetData(name string, data []byte) bool {
	payload := EncodeDataPayload(DataPayload{Name: name, Data: data})
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		pkt := NewPacket(c.id, LeaderID, PacketSetData, payload)
		c.transport.SendUntracked(pkt, c.remote)
		if _, ok := c.waitPacket(c.timeout, ackMatcher(pkt.ID)); ok {
			return true
		}
	}
	return false
}

// GetData asks the remote node for the bytes stored under name. It waits
// for the Ack, then the follow-up Data reply, acknowledging that reply in
// turn. A zero-length Data payload is treated as "key not found".
func (c *Client) GetData(name string) ([]byte, bool) {
	payload := EncodeDataPayload(DataPayload{Name: name})
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		pkt := NewPacket(c.id, LeaderID, PacketGetData, payload)
		c.transport.SendUntracked(pkt, c.remote)

		if _, ok := c.waitPacket(c.timeout, ackMatcher(pkt.ID)); !ok {
			continue
		}
		dataPkt, ok := c.waitPacket(c.timeout, dataMatcher)
		if !ok {
			continue
		}
		c.ackPacket(dataPkt)

		dp, ok := DecodeDataPayload(dataPkt.Payload)
		if !ok {
			continue
		}
		if len(dp.Data) == 0 {
			return nil, false
		}
		return dp.Data, true
	}
	return nil, false
}

func (c *Client) ackPacket(p Packet) {
	ack := NewPacket(c.id, p.Src, PacketAck, EncodeAckPayload(AckPayload{PacketID: p.ID}))
	c.transport.SendUntracked(ack, c.remote)
}

// waitPacket blocks, re-reading from the socket, until a packet satisfying
// match arrives or timeout elapses.
func (c *Client) waitPacket(timeout time.Duration, match func(Packet) bool) (Packet, bool) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Packet{}, false
		}
		p, _, ok := c.transport.Receive(remaining)
		if !ok {
			continue
		}
		if match(p) {
			return p, true
		}
	}
}

func ackMatcher(id uint32) func(Packet) bool {
	return func(p Packet) bool {
		if p.Type != PacketAck {
			return false
		}
		ap, ok := DecodeAckPayload(p.Payload)
		return ok && ap.PacketID == id
	}
}

func dataMatcher(p Packet) bool { return p.Type == PacketData }
