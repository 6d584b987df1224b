package core

import "testing"

func TestPacketRoundTrip(t *testing.T) {
	p := NewPacket(1, 2, PacketSetData, []byte("hello"))
	enc := EncodePacket(p)
	got, ok := DecodePacket(enc)
	if !ok {
		t.Fatalf("decode failed")
	}
	if got.Magic != p.Magic || got.ID != p.ID || got.Src != p.Src || got.Dst != p.Dst || got.Type != p.Type {
		t.Fatalf("header mismatch: got %+v, want %+v", got, p)
	}
	if string(got.Payload) != "hello" {
		t.Fatalf("payload mismatch: got %q", got.Payload)
	}
}

func TestPacketRoundTripEmptyPayload(t *testing.T) {
	p := NewPacket(0, 0, PacketAck, nil)
	got, ok := DecodePacket(EncodePacket(p))
	if !ok {
		t.Fatalf("decode failed")
	}
	if len(got.Payload) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(got.Payload))
	}
}

func TestDecodePacketRejectsShortBuffer(t *testing.T) {
	if _, ok := DecodePacket(make([]byte, PacketHeaderSize-1)); ok {
		t.Fatalf("expected decode to reject a truncated header")
	}
}

func TestDecodePacketRejectsBadMagic(t *testing.T) {
	p := NewPacket(1, 2, PacketProbe, []byte("x"))
	enc := EncodePacket(p)
	enc[0] ^= 0xFF
	if _, ok := DecodePacket(enc); ok {
		t.Fatalf("expected decode to reject a bad magic number")
	}
}

func TestPacketTypeString(t *testing.T) {
	cases := map[PacketType]string{
		PacketProbe:      "Probe",
		PacketAck:        "Ack",
		PacketType(0xFF): "Unknown",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Fatalf("PacketType(%d).String() = %q, want %q", typ, got, want)
		}
	}
}
