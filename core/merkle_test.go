package core

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

func TestComputeMerkleRootEmptyUsesBigEndianTimestamp(t *testing.T) {
	var prev [HashSize]byte
	prev[0] = 0xAB
	const ts = uint64(1700000000)

	got := ComputeMerkleRoot(nil, prev, ts)

	var tsBE [8]byte
	binary.BigEndian.PutUint64(tsBE[:], ts)
	want := sha256.Sum256(append(append([]byte{}, prev[:]...), tsBE[:]...))
	if got != want {
		t.Fatalf("empty-leaf root mismatch: got %x, want %x", got, want)
	}
}

func TestComputeMerkleRootSingleLeaf(t *testing.T) {
	var leaf [HashSize]byte
	leaf[0] = 0x01
	got := ComputeMerkleRoot([][HashSize]byte{leaf}, [HashSize]byte{}, 0)
	if got != leaf {
		t.Fatalf("single-leaf root should equal the leaf itself: got %x, want %x", got, leaf)
	}
}

func TestComputeMerkleRootOddLeavesDuplicatesLast(t *testing.T) {
	var a, b, c [HashSize]byte
	a[0], b[0], c[0] = 1, 2, 3

	gotOdd := ComputeMerkleRoot([][HashSize]byte{a, b, c}, [HashSize]byte{}, 0)
	gotPadded := ComputeMerkleRoot([][HashSize]byte{a, b, c, c}, [HashSize]byte{}, 0)
	if gotOdd != gotPadded {
		t.Fatalf("odd-length reduction should match explicit duplication: %x != %x", gotOdd, gotPadded)
	}
}

func TestComputeMerkleRootIsDeterministic(t *testing.T) {
	var a, b [HashSize]byte
	a[0], b[0] = 9, 10
	r1 := ComputeMerkleRoot([][HashSize]byte{a, b}, [HashSize]byte{}, 5)
	r2 := ComputeMerkleRoot([][HashSize]byte{a, b}, [HashSize]byte{}, 5)
	if r1 != r2 {
		t.Fatalf("expected identical input to produce identical root")
	}
}
