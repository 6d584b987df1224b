package core

import "encoding/binary"

// AckPayload carries the packet id being acknowledged.
type AckPayload struct {
	PacketID uint32
}

func EncodeAckPayload(p AckPayload) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, p.PacketID)
	return buf
}

func DecodeAckPayload(b []byte) (AckPayload, bool) {
	if len(b) < 4 {
		return AckPayload{}, false
	}
	return AckPayload{PacketID: binary.LittleEndian.Uint32(b[0:4])}, true
}

// ProbePayload announces a joining node's id and public key to the
// leader.
type ProbePayload struct {
	NodeID    uint16
	PublicKey [PublicKeySize]byte
}

func EncodeProbePayload(p ProbePayload) []byte {
	buf := make([]byte, 2+PublicKeySize)
	binary.LittleEndian.PutUint16(buf[0:2], p.NodeID)
	copy(buf[2:], p.PublicKey[:])
	return buf
}

func DecodeProbePayload(b []byte) (ProbePayload, bool) {
	if len(b) < 2+PublicKeySize {
		return ProbePayload{}, false
	}
	p := ProbePayload{NodeID: binary.LittleEndian.Uint16(b[0:2])}
	copy(p.PublicKey[:], b[2:2+PublicKeySize])
	return p, true
}

// SyncPayload is the discovery handshake's response: the responder's
// identity plus a summary of its chain.
type SyncPayload struct {
	NodeID            uint16
	PublicKey         [PublicKeySize]byte
	ChainHeight       uint32
	LastBlockRoot     [HashSize]byte
	LastBlockTimeUnix uint64
}

func EncodeSyncPayload(p SyncPayload) []byte {
	buf := make([]byte, 2+PublicKeySize+4+HashSize+8)
	off := 0
	binary.LittleEndian.PutUint16(buf[off:off+2], p.NodeID)
	off += 2
	copy(buf[off:off+PublicKeySize], p.PublicKey[:])
	off += PublicKeySize
	binary.LittleEndian.PutUint32(buf[off:off+4], p.ChainHeight)
	off += 4
	copy(buf[off:off+HashSize], p.LastBlockRoot[:])
	off += HashSize
	binary.LittleEndian.PutUint64(buf[off:off+8], p.LastBlockTimeUnix)
	return buf
}

func DecodeSyncPayload(b []byte) (SyncPayload, bool) {
	want := 2 + PublicKeySize + 4 + HashSize + 8
	if len(b) < want {
		return SyncPayload{}, false
	}
	var p SyncPayload
	off := 0
	p.NodeID = binary.LittleEndian.Uint16(b[off : off+2])
	off += 2
	copy(p.PublicKey[:], b[off:off+PublicKeySize])
	off += PublicKeySize
	p.ChainHeight = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	copy(p.LastBlockRoot[:], b[off:off+HashSize])
	off += HashSize
	p.LastBlockTimeUnix = binary.LittleEndian.Uint64(b[off : off+8])
	return p, true
}

// DataPayload carries a data name (64-byte window) alongside arbitrary
// bytes — used both for SetData/GetData requests and Data replies.
type DataPayload struct {
	Name string
	Data []byte
}

func EncodeDataPayload(p DataPayload) []byte {
	buf := make([]byte, DataNameSize+len(p.Data))
	putName(buf[:DataNameSize], p.Name)
	copy(buf[DataNameSize:], p.Data)
	return buf
}

func DecodeDataPayload(b []byte) (DataPayload, bool) {
	if len(b) < DataNameSize {
		return DataPayload{}, false
	}
	p := DataPayload{Name: readName(b[:DataNameSize])}
	if len(b) > DataNameSize {
		p.Data = append([]byte(nil), b[DataNameSize:]...)
	}
	return p, true
}

// TransactionPayload is a signed transaction: its 109-byte canonical
// encoding followed by a 64-byte Ed25519 signature over that encoding.
type TransactionPayload struct {
	Transaction Transaction
	Signature   [SignatureSize]byte
}

func EncodeTransactionPayload(p TransactionPayload) []byte {
	buf := make([]byte, TransactionSize+SignatureSize)
	copy(buf[:TransactionSize], EncodeTransaction(p.Transaction))
	copy(buf[TransactionSize:], p.Signature[:])
	return buf
}

func DecodeTransactionPayload(b []byte) (TransactionPayload, bool) {
	if len(b) < TransactionSize+SignatureSize {
		return TransactionPayload{}, false
	}
	tx, ok := DecodeTransaction(b[:TransactionSize])
	if !ok {
		return TransactionPayload{}, false
	}
	p := TransactionPayload{Transaction: tx}
	copy(p.Signature[:], b[TransactionSize:TransactionSize+SignatureSize])
	return p, true
}

// BlockPayload wraps a single block for the Block message.
type BlockPayload struct {
	Block Block
}

func EncodeBlockPayload(p BlockPayload) []byte { return EncodeBlock(p.Block) }

func DecodeBlockPayload(b []byte) (BlockPayload, bool) {
	blk, ok := DecodeBlock(b)
	if !ok {
		return BlockPayload{}, false
	}
	return BlockPayload{Block: blk}, true
}

// ChainPayload wraps a full chain for the GetChain reply.
type ChainPayload struct {
	Blocks []Block
}

func EncodeChainPayload(p ChainPayload) []byte { return EncodeChain(p.Blocks) }

func DecodeChainPayload(b []byte) ChainPayload { return ChainPayload{Blocks: DecodeChain(b)} }
