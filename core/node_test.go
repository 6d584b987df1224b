package core

import (
	"testing"
	"time"
)

func startTestNode(t *testing.T, cfg NodeConfig) *Node {
	t.Helper()
	n, err := NewNode(cfg)
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	stop := make(chan struct{})
	go n.Run(stop)
	t.Cleanup(func() {
		close(stop)
		n.Close()
	})
	return n
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestNodeSealsGenesisImmediately(t *testing.T) {
	leader := startTestNode(t, NodeConfig{ID: 0, BindAddr: "127.0.0.1:0", LeaderID: 0})
	if !waitUntil(t, 2*time.Second, func() bool { return leader.Chain().Height() >= 1 }) {
		t.Fatalf("expected the leader to seal a genesis block, height = %d", leader.Chain().Height())
	}
}

func TestFollowerCatchesUpViaGetChain(t *testing.T) {
	leader := startTestNode(t, NodeConfig{ID: 0, BindAddr: "127.0.0.1:0", LeaderID: 0})
	if !waitUntil(t, 2*time.Second, func() bool { return leader.Chain().Height() >= 1 }) {
		t.Fatalf("leader never sealed genesis")
	}

	follower := startTestNode(t, NodeConfig{
		ID: 1, BindAddr: "127.0.0.1:0", LeaderID: 0, LeaderAddr: leader.LocalAddr().String(),
	})
	if !waitUntil(t, 2*time.Second, func() bool { return follower.Chain().Height() >= 1 }) {
		t.Fatalf("follower never caught up, height = %d", follower.Chain().Height())
	}
	if follower.Chain().LastRoot() != leader.Chain().LastRoot() {
		t.Fatalf("follower's adopted chain root does not match the leader's")
	}
}

func TestHandleSetDataStoresAndMintsTransaction(t *testing.T) {
	leader := startTestNode(t, NodeConfig{ID: 0, BindAddr: "127.0.0.1:0", LeaderID: 0})
	// Let genesis seal first so it cannot drain the transaction minted below.
	if !waitUntil(t, 2*time.Second, func() bool { return leader.Chain().Height() >= 1 }) {
		t.Fatalf("leader never sealed genesis")
	}

	payload := EncodeDataPayload(DataPayload{Name: "blob", Data: []byte("value")})
	pkt := Packet{Magic: Magic, Src: 7, Type: PacketSetData, Payload: payload}
	leader.handleSetData(pkt, nil)

	got, ok := leader.cache.Get("blob")
	if !ok || string(got) != "value" {
		t.Fatalf("cache.Get(blob) = (%q, %v), want (\"value\", true)", got, ok)
	}
	if leader.PendingTransactionCount() != 1 {
		t.Fatalf("PendingTransactionCount() = %d, want 1", leader.PendingTransactionCount())
	}
}

func TestHandleTransactionRejectsUnknownSource(t *testing.T) {
	n := startTestNode(t, NodeConfig{ID: 0, BindAddr: "127.0.0.1:0", LeaderID: 0})

	tx, err := NewTransaction(5, 6, "x", OpSet, 1700000000)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	signer, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	sig := Sign(signer, EncodeTransaction(tx)) // valid signature, but n never registered this source's key
	payload := EncodeTransactionPayload(TransactionPayload{Transaction: tx, Signature: sig})
	pkt := Packet{Magic: Magic, Src: 5, Type: PacketTransaction, Payload: payload}
	n.handleTransaction(pkt)

	if n.PendingTransactionCount() != 0 {
		t.Fatalf("expected a transaction from an unregistered source to be rejected")
	}
}

func TestHandleTransactionRejectsBadSignature(t *testing.T) {
	n := startTestNode(t, NodeConfig{ID: 0, BindAddr: "127.0.0.1:0", LeaderID: 0})

	peer, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	n.pubKeys.set(5, peer.Public)

	tx, err := NewTransaction(5, 6, "x", OpSet, 1700000000)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	sig := Sign(peer, EncodeTransaction(tx))
	sig[0] ^= 0xFF // flip a byte to corrupt the signature

	payload := EncodeTransactionPayload(TransactionPayload{Transaction: tx, Signature: sig})
	pkt := Packet{Magic: Magic, Src: 5, Type: PacketTransaction, Payload: payload}
	n.handleTransaction(pkt)

	if n.PendingTransactionCount() != 0 {
		t.Fatalf("expected a flipped signature to be rejected")
	}
}

func TestHandleTransactionAcceptsValidSignature(t *testing.T) {
	n := startTestNode(t, NodeConfig{ID: 0, BindAddr: "127.0.0.1:0", LeaderID: 0})
	// Let genesis seal first so it cannot drain the admitted transaction.
	if !waitUntil(t, 2*time.Second, func() bool { return n.Chain().Height() >= 1 }) {
		t.Fatalf("leader never sealed genesis")
	}

	peer, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	n.pubKeys.set(5, peer.Public)

	tx, err := NewTransaction(5, 6, "x", OpSet, 1700000000)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	sig := Sign(peer, EncodeTransaction(tx))

	payload := EncodeTransactionPayload(TransactionPayload{Transaction: tx, Signature: sig})
	pkt := Packet{Magic: Magic, Src: 5, Type: PacketTransaction, Payload: payload}
	n.handleTransaction(pkt)

	if n.PendingTransactionCount() != 1 {
		t.Fatalf("expected a validly signed transaction to be admitted")
	}
}
