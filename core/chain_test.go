package core

import "testing"

func TestChainAppendAndTip(t *testing.T) {
	c := NewChain()
	if _, ok := c.Tip(); ok {
		t.Fatalf("expected an empty chain to have no tip")
	}
	b0 := NewBlock(nil, [HashSize]byte{}, 1700000000)
	c.Append(b0)
	tip, ok := c.Tip()
	if !ok || tip.MerkleRoot != b0.MerkleRoot {
		t.Fatalf("unexpected tip after append")
	}
	if c.Height() != 1 {
		t.Fatalf("Height() = %d, want 1", c.Height())
	}
}

func TestChainLastRootEmptyIsZeroHash(t *testing.T) {
	c := NewChain()
	if c.LastRoot() != ([HashSize]byte{}) {
		t.Fatalf("expected zero hash for an empty chain")
	}
}

func TestChainReplaceIfTallerOnlyGrows(t *testing.T) {
	c := NewChain()
	b0 := NewBlock(nil, [HashSize]byte{}, 1700000000)
	b1 := NewBlock(nil, b0.MerkleRoot, 1700000100)
	c.Append(b0)
	c.Append(b1)

	if c.ReplaceIfTaller([]Block{b0}) {
		t.Fatalf("expected a shorter chain not to replace a taller one")
	}
	if c.Height() != 2 {
		t.Fatalf("height changed after a rejected replacement: got %d", c.Height())
	}

	b2 := NewBlock(nil, b1.MerkleRoot, 1700000200)
	if !c.ReplaceIfTaller([]Block{b0, b1, b2}) {
		t.Fatalf("expected a taller chain to replace")
	}
	if c.Height() != 3 {
		t.Fatalf("expected height 3 after replacement, got %d", c.Height())
	}
}

func TestChainSnapshotIsIndependentCopy(t *testing.T) {
	c := NewChain()
	c.Append(NewBlock(nil, [HashSize]byte{}, 1700000000))
	snap := c.Snapshot()
	snap[0].Timestamp = 99
	tip, _ := c.Tip()
	if tip.Timestamp == 99 {
		t.Fatalf("mutating a snapshot should not affect the chain")
	}
}
