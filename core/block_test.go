package core

import "testing"

func newTestTx(t *testing.T, name string, id uint16) Transaction {
	t.Helper()
	tx, err := NewTransaction(id, id+100, name, OpSet, 1700000000)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	return tx
}

func TestBlockRoundTrip(t *testing.T) {
	txs := []Transaction{newTestTx(t, "a", 1), newTestTx(t, "b", 2)}
	var prev [HashSize]byte
	prev[0] = 0x7

	blk := NewBlock(txs, prev, 1700000100)
	enc := EncodeBlock(blk)
	got, ok := DecodeBlock(enc)
	if !ok {
		t.Fatalf("decode failed")
	}
	if got.MerkleRoot != blk.MerkleRoot || got.PrevRoot != blk.PrevRoot || got.Timestamp != blk.Timestamp {
		t.Fatalf("header mismatch: got %+v, want %+v", got, blk)
	}
	if len(got.Transactions) != len(txs) {
		t.Fatalf("transaction count = %d, want %d", len(got.Transactions), len(txs))
	}
	for i := range txs {
		if got.Transactions[i] != txs[i] {
			t.Fatalf("transaction %d mismatch: got %+v, want %+v", i, got.Transactions[i], txs[i])
		}
	}
}

func TestNewBlockEmptyTransactions(t *testing.T) {
	blk := NewBlock(nil, [HashSize]byte{}, 1700000000)
	if len(blk.Transactions) != 0 {
		t.Fatalf("expected a genesis-shaped block to carry no transactions")
	}
	enc := EncodeBlock(blk)
	got, ok := DecodeBlock(enc)
	if !ok {
		t.Fatalf("decode failed")
	}
	if got.MerkleRoot != blk.MerkleRoot {
		t.Fatalf("empty-block merkle root mismatch")
	}
}

func TestDecodeBlockRejectsTruncatedHeader(t *testing.T) {
	if _, ok := DecodeBlock(make([]byte, blockHeaderSize-1)); ok {
		t.Fatalf("expected decode to reject a truncated header")
	}
}

func TestDecodeBlockDropsTrailingPartialTransaction(t *testing.T) {
	blk := NewBlock([]Transaction{newTestTx(t, "a", 1)}, [HashSize]byte{}, 1700000000)
	enc := EncodeBlock(blk)
	truncated := append(enc, make([]byte, TransactionSize/2)...)

	got, ok := DecodeBlock(truncated)
	if !ok {
		t.Fatalf("decode should not fail on a trailing partial record")
	}
	if len(got.Transactions) != 1 {
		t.Fatalf("expected the trailing partial record to be dropped, got %d transactions", len(got.Transactions))
	}
}

func TestChainRoundTrip(t *testing.T) {
	b0 := NewBlock(nil, [HashSize]byte{}, 1700000000)
	b1 := NewBlock([]Transaction{newTestTx(t, "a", 1)}, b0.MerkleRoot, 1700000100)

	enc := EncodeChain([]Block{b0, b1})
	got := DecodeChain(enc)
	if len(got) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(got))
	}
	if got[0].MerkleRoot != b0.MerkleRoot || got[1].MerkleRoot != b1.MerkleRoot {
		t.Fatalf("chain round trip mismatch")
	}
}

func TestDecodeChainStopsAtTruncatedRecord(t *testing.T) {
	b0 := NewBlock(nil, [HashSize]byte{}, 1700000000)
	enc := EncodeChain([]Block{b0})
	enc = append(enc, 0xFF, 0xFF) // a length prefix claiming far more data than follows

	got := DecodeChain(enc)
	if len(got) != 1 {
		t.Fatalf("expected the truncated trailing record to be dropped, got %d blocks", len(got))
	}
}
