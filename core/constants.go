package core

import "time"

// Wire-level constants shared by every component in the package. Values are
// fixed by the protocol and must not be changed independently on a node
// without breaking interoperability with the rest of the network.
const (
	// Magic is the 32-bit sentinel every packet begins with.
	Magic uint32 = 0xA71A5001

	// PacketBufferSize is the size of the read buffer used by the datagram
	// transport. Frames larger than this are truncated by the OS socket
	// layer before they ever reach the decoder.
	PacketBufferSize = 1024

	// MaxRetries bounds how many times an unacked packet is resent before
	// the sender gives up on it.
	MaxRetries = 3

	// AckTimeout is how long the sender waits for an Ack before resending.
	AckTimeout = 500 * time.Millisecond

	// BlockPeriod is the minimum wall-clock gap the leader enforces
	// between two successive sealed blocks.
	BlockPeriod = 10 * time.Second

	// ReceiveTimeout bounds the transport's blocking receive call so the
	// engine loop can interleave retransmission and block-cadence checks.
	ReceiveTimeout = 10 * time.Millisecond

	// LeaderID is the well-known node id responsible for sealing blocks.
	LeaderID uint16 = 0

	// PacketHeaderSize is the fixed, little-endian header every packet
	// carries ahead of its payload: magic(4) + id(4) + src(2) + dst(2) +
	// type(1) + timestamp(8).
	PacketHeaderSize = 21

	// TransactionSize is the fixed, canonical encoded length of a
	// Transaction record.
	TransactionSize = 109

	// DataNameSize is the width of the zero-padded name window carried by
	// Transaction and DataPayload.
	DataNameSize = 64

	// SignatureSize is the length of an Ed25519 signature.
	SignatureSize = 64

	// PublicKeySize is the length of an Ed25519 public key.
	PublicKeySize = 32

	// HashSize is the length of a SHA-256 digest.
	HashSize = 32
)
