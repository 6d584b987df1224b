package core

import (
	"crypto/sha256"
	"encoding/binary"
)

// ComputeMerkleRoot computes the block Merkle root over an ordered list of
// transaction identity hashes, given the previous block's root and the
// block's creation timestamp.
//
// Rules (binding wire contract, not an implementation detail):
//   - empty leaf set:    SHA-256(prevRoot || be_u64(timestamp))
//   - single leaf:       the leaf itself
//   - otherwise:         pairwise SHA-256(left || right), duplicating the
//     final element when the level has odd length, reduced until one hash
//     remains.
//
// Grounded on core/merkle_tree_operations.go's pairing-with-duplication
// reduction, narrowed to return only the root (this system never serves
// Merkle proofs).
func ComputeMerkleRoot(leaves [][HashSize]byte, prevRoot [HashSize]byte, timestamp uint64) [HashSize]byte {
	switch len(leaves) {
	case 0:
		var ts [8]byte
		binary.BigEndian.PutUint64(ts[:], timestamp)
		buf := make([]byte, 0, HashSize+8)
		buf = append(buf, prevRoot[:]...)
		buf = append(buf, ts[:]...)
		return sha256.Sum256(buf)
	case 1:
		return leaves[0]
	}

	level := make([][HashSize]byte, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([][HashSize]byte, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			pair := make([]byte, 0, 2*HashSize)
			pair = append(pair, level[i][:]...)
			pair = append(pair, level[i+1][:]...)
			next[i/2] = sha256.Sum256(pair)
		}
		level = next
	}
	return level[0]
}
