package core

import (
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NodeConfig configures a single node process.
type NodeConfig struct {
	ID         uint16
	BindAddr   string
	LeaderID   uint16
	LeaderAddr string // leader's datagram endpoint; empty when this node IS the leader
	Cache      Cache  // optional; defaults to a fresh InMemoryCache
}

// Node is the single-threaded engine: one node's identity, peer
// bookkeeping, chain, pending-transaction pool, and dispatch loop. There
// is no internal locking on the hot path because the engine never touches
// its own state from more than one goroutine; the exported maps are
// guarded only so an external status reader can take a safe snapshot
// concurrently.
type Node struct {
	id         uint16
	instanceID string // process-lifetime correlation id for log lines, distinct from the wire's numeric node id
	leaderID   uint16
	leader     *net.UDPAddr // nil when this node is the leader

	keys      KeyPair
	transport *Transport
	cache     Cache
	chain     *Chain

	addrBook *peerAddrBook
	pubKeys  *peerKeyTable
	txPool   *pendingTxPool
}

// NewNode constructs a Node bound to cfg.BindAddr with a fresh Ed25519
// identity. It does not start the engine loop — call Run for that.
func NewNode(cfg NodeConfig) (*Node, error) {
	kp, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	tr, err := NewTransport(cfg.BindAddr)
	if err != nil {
		return nil, err
	}
	var leaderAddr *net.UDPAddr
	if cfg.LeaderAddr != "" {
		leaderAddr, err = net.ResolveUDPAddr("udp", cfg.LeaderAddr)
		if err != nil {
			tr.Close()
			return nil, fmt.Errorf("core: resolve leader addr %q: %w", cfg.LeaderAddr, err)
		}
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NewInMemoryCache()
	}
	return &Node{
		id:         cfg.ID,
		instanceID: uuid.New().String(),
		leaderID:   cfg.LeaderID,
		leader:     leaderAddr,
		keys:       kp,
		transport:  tr,
		cache:      cache,
		chain:      NewChain(),
		addrBook:   newPeerAddrBook(),
		pubKeys:    newPeerKeyTable(),
		txPool:     newPendingTxPool(),
	}, nil
}

// ID returns the node's own identifier.
func (n *Node) ID() uint16 { return n.id }

// InstanceID returns a process-lifetime UUID used to correlate this node's
// log lines, independent of its small numeric wire id (which can repeat
// across restarts or test runs).
func (n *Node) InstanceID() string { return n.instanceID }

// IsLeader reports whether this node is the designated block producer.
func (n *Node) IsLeader() bool { return n.id == n.leaderID }

// Chain exposes the node's chain for read-only inspection (status
// endpoints, tests).
func (n *Node) Chain() *Chain { return n.chain }

// Cache exposes the node's cache handle for read-only inspection.
func (n *Node) Cache() Cache { return n.cache }

// PublicKey returns this node's Ed25519 public key.
func (n *Node) PublicKey() []byte { return append([]byte(nil), n.keys.Public...) }

// LocalAddr returns the node's bound datagram address.
func (n *Node) LocalAddr() *net.UDPAddr { return n.transport.LocalAddr() }

// PeerCount reports how many peers this node has an address for.
func (n *Node) PeerCount() int { return n.addrBook.len() }

// PendingTransactionCount reports the size of the pending-transaction pool.
func (n *Node) PendingTransactionCount() int { return n.txPool.len() }

// Close releases the node's transport socket.
func (n *Node) Close() error { return n.transport.Close() }

// Run drives the single-threaded engine loop until stop is closed. On
// entry, non-leader nodes probe the leader to begin discovery.
func (n *Node) Run(stop <-chan struct{}) {
	if !n.IsLeader() && n.leader != nil {
		n.sendProbe()
	}
	for {
		select {
		case <-stop:
			return
		default:
		}

		n.transport.Sweep()

		if n.IsLeader() {
			n.maybeSealBlock()
		}

		p, addr, ok := n.transport.Receive(ReceiveTimeout)
		if !ok {
			continue
		}
		n.addrBook.set(p.Src, addr)
		n.dispatch(p, addr)
	}
}

func (n *Node) sendProbe() {
	payload := EncodeProbePayload(ProbePayload{NodeID: n.id, PublicKey: fixedPub(n.keys.Public)})
	pkt := NewPacket(n.id, n.leaderID, PacketProbe, payload)
	n.transport.Send(pkt, n.leader)
}

func fixedPub(pub []byte) [PublicKeySize]byte {
	var out [PublicKeySize]byte
	copy(out[:], pub)
	return out
}

// dispatch replies with an Ack (unless p is itself an Ack) and routes p to
// its type-specific handler.
func (n *Node) dispatch(p Packet, addr *net.UDPAddr) {
	if p.Type != PacketAck {
		ack := NewPacket(n.id, p.Src, PacketAck, EncodeAckPayload(AckPayload{PacketID: p.ID}))
		n.transport.Send(ack, addr)
	}

	switch p.Type {
	case PacketAck:
		n.handleAck(p)
	case PacketProbe:
		n.handleProbe(p, addr)
	case PacketSync:
		n.handleSync(p, addr)
	case PacketGetChain:
		n.handleGetChain(p, addr)
	case PacketChain:
		n.handleChain(p)
	case PacketSetData:
		n.handleSetData(p, addr)
	case PacketGetData:
		n.handleGetData(p, addr)
	case PacketTransaction:
		n.handleTransaction(p)
	case PacketBlock:
		n.handleBlock(p)
	default:
		log.WithField("type", byte(p.Type)).Debug("node: unknown packet type")
	}
}

func (n *Node) handleAck(p Packet) {
	ap, ok := DecodeAckPayload(p.Payload)
	if !ok {
		return
	}
	n.transport.AckReceived(ap.PacketID)
}

func (n *Node) handleProbe(p Packet, addr *net.UDPAddr) {
	pp, ok := DecodeProbePayload(p.Payload)
	if !ok {
		return
	}
	n.pubKeys.set(p.Src, pp.PublicKey[:])

	sp := SyncPayload{
		NodeID:            n.id,
		PublicKey:         fixedPub(n.keys.Public),
		ChainHeight:       uint32(n.chain.Height()),
		LastBlockRoot:     n.chain.LastRoot(),
		LastBlockTimeUnix: n.chain.LastTimestamp(),
	}
	pkt := NewPacket(n.id, p.Src, PacketSync, EncodeSyncPayload(sp))
	n.transport.Send(pkt, addr)
}

func (n *Node) handleSync(p Packet, addr *net.UDPAddr) {
	sp, ok := DecodeSyncPayload(p.Payload)
	if !ok {
		return
	}
	n.pubKeys.set(p.Src, sp.PublicKey[:])

	if int(sp.ChainHeight) > n.chain.Height() {
		pkt := NewPacket(n.id, p.Src, PacketGetChain, nil)
		n.transport.Send(pkt, addr)
	}
}

func (n *Node) handleGetChain(p Packet, addr *net.UDPAddr) {
	payload := EncodeChainPayload(ChainPayload{Blocks: n.chain.Snapshot()})
	pkt := NewPacket(n.id, p.Src, PacketChain, payload)
	n.transport.Send(pkt, addr)
}

func (n *Node) handleChain(p Packet) {
	cp := DecodeChainPayload(p.Payload)
	if n.chain.ReplaceIfTaller(cp.Blocks) {
		log.WithField("height", len(cp.Blocks)).Info("node: adopted chain from peer")
	}
}

func (n *Node) handleSetData(p Packet, addr *net.UDPAddr) {
	dp, ok := DecodeDataPayload(p.Payload)
	if !ok {
		return
	}
	n.cache.Set(dp.Name, dp.Data)

	tx, err := NewTransaction(n.id, p.Src, dp.Name, OpSet, uint64(time.Now().Unix()))
	if err != nil {
		log.WithError(err).Warn("node: cannot mint transaction for oversized name")
		return
	}
	sig := Sign(n.keys, EncodeTransaction(tx))
	n.txPool.add(tx)
	n.gossipTransaction(tx, sig)
}

// handleGetData replies with a Data packet carrying the cached bytes, or
// an empty payload when the key is absent. Get is never promoted to a
// transaction.
func (n *Node) handleGetData(p Packet, addr *net.UDPAddr) {
	dp, ok := DecodeDataPayload(p.Payload)
	if !ok {
		return
	}
	data, _ := n.cache.Get(dp.Name)
	reply := EncodeDataPayload(DataPayload{Name: dp.Name, Data: data})
	pkt := NewPacket(n.id, p.Src, PacketData, reply)
	n.transport.Send(pkt, addr)
}

func (n *Node) handleTransaction(p Packet) {
	tp, ok := DecodeTransactionPayload(p.Payload)
	if !ok {
		return
	}
	pub := n.pubKeys.get(p.Src)
	if pub == nil {
		log.WithField("src", p.Src).Warn("node: transaction from unknown source key")
		return
	}
	if !Verify(pub, EncodeTransaction(tp.Transaction), tp.Signature) {
		log.WithField("src", p.Src).Warn("node: transaction failed signature verification")
		return
	}
	if !VerifyHash(tp.Transaction) {
		log.WithField("src", p.Src).Warn("node: transaction hash mismatch")
		return
	}
	n.txPool.add(tp.Transaction)
}

func (n *Node) handleBlock(p Packet) {
	bp, ok := DecodeBlockPayload(p.Payload)
	if !ok {
		return
	}
	n.chain.Append(bp.Block)
	for _, tx := range bp.Block.Transactions {
		n.txPool.remove(tx.Hash)
	}
}

func (n *Node) gossipTransaction(tx Transaction, sig [SignatureSize]byte) {
	payload := EncodeTransactionPayload(TransactionPayload{Transaction: tx, Signature: sig})
	for _, peer := range n.knownPeers() {
		pkt := NewPacket(n.id, peer.id, PacketTransaction, payload)
		n.transport.Send(pkt, peer.addr)
	}
}

// maybeSealBlock implements the leader-only block cadence: seal the
// genesis block immediately if the chain is empty, otherwise seal once
// BlockPeriod has elapsed since the tip.
func (n *Node) maybeSealBlock() {
	tip, ok := n.chain.Tip()
	if !ok {
		n.sealBlock()
		return
	}
	tipTime := time.Unix(int64(tip.Timestamp), 0)
	if time.Since(tipTime) >= BlockPeriod {
		n.sealBlock()
	}
}

func (n *Node) sealBlock() {
	txs := n.txPool.drainSortedByHash()
	prevRoot := n.chain.LastRoot()
	blk := NewBlock(txs, prevRoot, uint64(time.Now().Unix()))
	n.chain.Append(blk)

	payload := EncodeBlockPayload(BlockPayload{Block: blk})
	for _, peer := range n.knownPeers() {
		pkt := NewPacket(n.id, peer.id, PacketBlock, payload)
		n.transport.Send(pkt, peer.addr)
	}
	log.WithFields(logrus.Fields{
		"instance": n.instanceID,
		"height":   n.chain.Height(),
		"txs":      len(blk.Transactions),
	}).Info("node: sealed block")
}

// knownPeer pairs a peer id with its last-known address, for broadcast.
type knownPeer struct {
	id   uint16
	addr *net.UDPAddr
}

// knownPeers returns every peer this node has both an address and a
// registered public key for — the broadcast set for transactions and
// blocks.
func (n *Node) knownPeers() []knownPeer {
	addrs := n.addrBook.snapshot()
	var out []knownPeer
	for id, addr := range addrs {
		if n.pubKeys.get(id) != nil {
			out = append(out, knownPeer{id: id, addr: addr})
		}
	}
	return out
}
