package core

import "encoding/binary"

// blockHeaderSize is the fixed portion of a block's encoding: merkle root
// (32) + previous root (32) + timestamp (8).
const blockHeaderSize = HashSize + HashSize + 8

// Block is a sealed batch of signature-verified transactions: a Merkle
// root over their identity hashes, a back-reference to the predecessor
// block's root, and a creation timestamp.
type Block struct {
	MerkleRoot   [HashSize]byte
	PrevRoot     [HashSize]byte
	Timestamp    uint64
	Transactions []Transaction
}

// NewBlock seals txs (in the given order) against prevRoot, computing the
// block's Merkle root. timestamp is the block's creation time.
func NewBlock(txs []Transaction, prevRoot [HashSize]byte, timestamp uint64) Block {
	leaves := make([][HashSize]byte, len(txs))
	for i, t := range txs {
		leaves[i] = t.Hash
	}
	return Block{
		MerkleRoot:   ComputeMerkleRoot(leaves, prevRoot, timestamp),
		PrevRoot:     prevRoot,
		Timestamp:    timestamp,
		Transactions: txs,
	}
}

// EncodeBlock serialises b as root(32) || prevRoot(32) || timestamp(8 LE)
// || transactions (109 bytes each, in order).
func EncodeBlock(b Block) []byte {
	buf := make([]byte, blockHeaderSize+len(b.Transactions)*TransactionSize)
	copy(buf[0:HashSize], b.MerkleRoot[:])
	copy(buf[HashSize:2*HashSize], b.PrevRoot[:])
	binary.LittleEndian.PutUint64(buf[2*HashSize:blockHeaderSize], b.Timestamp)
	off := blockHeaderSize
	for _, t := range b.Transactions {
		copy(buf[off:off+TransactionSize], EncodeTransaction(t))
		off += TransactionSize
	}
	return buf
}

// DecodeBlock parses b into a Block. It returns ok=false if the header is
// truncated; a trailing partial transaction record (shorter than 109
// bytes) is silently dropped rather than rejecting the whole block.
func DecodeBlock(b []byte) (Block, bool) {
	if len(b) < blockHeaderSize {
		return Block{}, false
	}
	blk := Block{
		Timestamp: binary.LittleEndian.Uint64(b[2*HashSize : blockHeaderSize]),
	}
	copy(blk.MerkleRoot[:], b[0:HashSize])
	copy(blk.PrevRoot[:], b[HashSize:2*HashSize])

	rest := b[blockHeaderSize:]
	for len(rest) >= TransactionSize {
		t, ok := DecodeTransaction(rest[:TransactionSize])
		if !ok {
			break
		}
		blk.Transactions = append(blk.Transactions, t)
		rest = rest[TransactionSize:]
	}
	return blk, true
}

// EncodeChain serialises an ordered run of blocks as a sequence of
// length-prefixed (u16 LE) records.
func EncodeChain(blocks []Block) []byte {
	var buf []byte
	for _, blk := range blocks {
		enc := EncodeBlock(blk)
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(enc)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, enc...)
	}
	return buf
}

// DecodeChain parses a length-prefixed run of blocks, stopping at the
// first truncated record and keeping whatever decoded cleanly before it —
// it never errors.
func DecodeChain(b []byte) []Block {
	var blocks []Block
	for len(b) >= 2 {
		n := binary.LittleEndian.Uint16(b[0:2])
		b = b[2:]
		if int(n) > len(b) {
			break
		}
		blk, ok := DecodeBlock(b[:n])
		if !ok {
			break
		}
		blocks = append(blocks, blk)
		b = b[n:]
	}
	return blocks
}
