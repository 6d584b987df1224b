package core

import (
	"crypto/rand"
	"encoding/binary"
)

// PacketType is the closed set of wire message kinds. Numeric values are
// part of the wire contract and must stay stable across releases.
type PacketType uint8

const (
	PacketProbe PacketType = iota
	PacketSync
	PacketSetData
	PacketGetData
	PacketData
	PacketGetChain
	PacketChain
	PacketBlock
	PacketTransaction
	PacketAck
)

func (t PacketType) String() string {
	switch t {
	case PacketProbe:
		return "Probe"
	case PacketSync:
		return "Sync"
	case PacketSetData:
		return "SetData"
	case PacketGetData:
		return "GetData"
	case PacketData:
		return "Data"
	case PacketGetChain:
		return "GetChain"
	case PacketChain:
		return "Chain"
	case PacketBlock:
		return "Block"
	case PacketTransaction:
		return "Transaction"
	case PacketAck:
		return "Ack"
	default:
		return "Unknown"
	}
}

// Packet is the wire frame shared by every message exchanged between nodes
// and clients: a 21-byte little-endian header followed by a type-specific
// payload.
type Packet struct {
	Magic     uint32
	ID        uint32
	Src       uint16
	Dst       uint16
	Type      PacketType
	Timestamp uint64
	Payload   []byte
}

// NewPacket builds a packet addressed from src to dst, assigning a fresh
// random 32-bit id. Timestamp is reserved by the wire format and left zero.
func NewPacket(src, dst uint16, typ PacketType, payload []byte) Packet {
	return Packet{
		Magic:   Magic,
		ID:      randomPacketID(),
		Src:     src,
		Dst:     dst,
		Type:    typ,
		Payload: payload,
	}
}

func randomPacketID() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand on a sane platform never fails; fall back to a
		// deterministic-but-distinct value rather than panicking.
		return 1
	}
	return binary.LittleEndian.Uint32(b[:])
}

// EncodePacket serialises p into its wire representation.
func EncodePacket(p Packet) []byte {
	buf := make([]byte, PacketHeaderSize+len(p.Payload))
	binary.LittleEndian.PutUint32(buf[0:4], p.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], p.ID)
	binary.LittleEndian.PutUint16(buf[8:10], p.Src)
	binary.LittleEndian.PutUint16(buf[10:12], p.Dst)
	buf[12] = byte(p.Type)
	binary.LittleEndian.PutUint64(buf[13:21], p.Timestamp)
	copy(buf[21:], p.Payload)
	return buf
}

// DecodePacket parses b into a Packet. It returns ok=false without error
// when b is too short or its magic does not match — malformed frames are
// dropped silently per the wire contract, never panicked on.
func DecodePacket(b []byte) (Packet, bool) {
	if len(b) < PacketHeaderSize {
		return Packet{}, false
	}
	magic := binary.LittleEndian.Uint32(b[0:4])
	if magic != Magic {
		return Packet{}, false
	}
	p := Packet{
		Magic:     magic,
		ID:        binary.LittleEndian.Uint32(b[4:8]),
		Src:       binary.LittleEndian.Uint16(b[8:10]),
		Dst:       binary.LittleEndian.Uint16(b[10:12]),
		Type:      PacketType(b[12]),
		Timestamp: binary.LittleEndian.Uint64(b[13:21]),
	}
	if len(b) > PacketHeaderSize {
		p.Payload = append([]byte(nil), b[PacketHeaderSize:]...)
	}
	return p, true
}

// putName writes s into a DataNameSize-wide zero-padded window of dst,
// truncation-free — callers must validate len(s) <= DataNameSize first.
func putName(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// readName reads a NUL-terminated (or window-filling) name out of a
// DataNameSize-wide window.
func readName(src []byte) string {
	for i, b := range src {
		if b == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}
