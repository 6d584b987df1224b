package core

import (
	"bytes"
	"net"
	"sort"
	"sync"
)

// peerAddrBook is the node's address book: peer id -> last-known datagram
// address, learned from the source address of every inbound packet.
// Grounded on core/network.go's peer-store pattern, narrowed to the single
// address-per-id mapping this system needs.
type peerAddrBook struct {
	mu    sync.RWMutex
	addrs map[uint16]*net.UDPAddr
}

func newPeerAddrBook() *peerAddrBook {
	return &peerAddrBook{addrs: make(map[uint16]*net.UDPAddr)}
}

func (b *peerAddrBook) set(id uint16, addr *net.UDPAddr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addrs[id] = addr
}

func (b *peerAddrBook) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.addrs)
}

func (b *peerAddrBook) snapshot() map[uint16]*net.UDPAddr {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[uint16]*net.UDPAddr, len(b.addrs))
	for id, addr := range b.addrs {
		out[id] = addr
	}
	return out
}

// peerKeyTable maps peer id -> Ed25519 public key, learned from Probe and
// Sync handshake payloads.
type peerKeyTable struct {
	mu   sync.RWMutex
	keys map[uint16][]byte
}

func newPeerKeyTable() *peerKeyTable {
	return &peerKeyTable{keys: make(map[uint16][]byte)}
}

func (t *peerKeyTable) set(id uint16, pub []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.keys[id] = append([]byte(nil), pub...)
}

// get returns a copy of the registered public key for id, or nil if none
// is known.
func (t *peerKeyTable) get(id uint16) []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pub, ok := t.keys[id]
	if !ok {
		return nil
	}
	return append([]byte(nil), pub...)
}

// pendingTxPool is the node's pool of transactions admitted (locally
// minted or gossiped-in) but not yet sealed into a block, keyed by
// transaction hash so a given transaction is never double-counted.
// Grounded on core/ledger.go's mempool map+mutex shape.
type pendingTxPool struct {
	mu  sync.Mutex
	txs map[[HashSize]byte]Transaction
}

func newPendingTxPool() *pendingTxPool {
	return &pendingTxPool{txs: make(map[[HashSize]byte]Transaction)}
}

func (p *pendingTxPool) add(tx Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.txs[tx.Hash]; exists {
		return
	}
	p.txs[tx.Hash] = tx
}

func (p *pendingTxPool) remove(hash [HashSize]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.txs, hash)
}

func (p *pendingTxPool) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.txs)
}

// drainSortedByHash empties the pool and returns its contents ordered by
// ascending hash, giving block sealing a deterministic transaction order.
func (p *pendingTxPool) drainSortedByHash() []Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Transaction, 0, len(p.txs))
	for _, tx := range p.txs {
		out = append(out, tx)
	}
	p.txs = make(map[[HashSize]byte]Transaction)
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Hash[:], out[j].Hash[:]) < 0
	})
	return out
}
