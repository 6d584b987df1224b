package core

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

// CacheOperation is the kind of cache effect a transaction witnesses.
type CacheOperation uint8

const (
	OpSet CacheOperation = iota
	OpGet
	OpDelete
)

func (o CacheOperation) String() string {
	switch o {
	case OpSet:
		return "Set"
	case OpGet:
		return "Get"
	case OpDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// ErrNameTooLong is returned by NewTransaction when the data name exceeds
// the 64-byte wire window.
var ErrNameTooLong = errors.New("core: data name exceeds 64 bytes")

// Transaction is the fixed 109-byte audit record minted whenever a node
// observes a cache-mutating client request. Hash is a pure function of the
// other five fields and is the transaction's identity.
type Transaction struct {
	NodeID    uint16
	ClientID  uint16
	DataName  string
	Operation CacheOperation
	Timestamp uint64
	Hash      [HashSize]byte
}

// NewTransaction builds a transaction witnessed by nodeID for clientID,
// stamped with the given timestamp, and computes the content hash. It fails if
// dataName does not fit the 64-byte wire window.
func NewTransaction(nodeID, clientID uint16, dataName string, op CacheOperation, timestamp uint64) (Transaction, error) {
	if len(dataName) > DataNameSize {
		return Transaction{}, ErrNameTooLong
	}
	t := Transaction{
		NodeID:    nodeID,
		ClientID:  clientID,
		DataName:  dataName,
		Operation: op,
		Timestamp: timestamp,
	}
	t.Hash = hashTransactionFields(t)
	return t, nil
}

// canonicalFields returns the 77-byte canonical encoding of every field
// except Hash — the input to the content-hash function and the prefix of
// the transaction's wire encoding.
func canonicalFields(t Transaction) []byte {
	buf := make([]byte, TransactionSize-HashSize)
	binary.LittleEndian.PutUint16(buf[0:2], t.NodeID)
	binary.LittleEndian.PutUint16(buf[2:4], t.ClientID)
	putName(buf[4:4+DataNameSize], t.DataName)
	buf[4+DataNameSize] = byte(t.Operation)
	binary.LittleEndian.PutUint64(buf[5+DataNameSize:13+DataNameSize], t.Timestamp)
	return buf
}

func hashTransactionFields(t Transaction) [HashSize]byte {
	return sha256.Sum256(canonicalFields(t))
}

// VerifyHash reports whether t.Hash matches the hash recomputed from its
// other fields.
func VerifyHash(t Transaction) bool {
	return hashTransactionFields(t) == t.Hash
}

// EncodeTransaction serialises t into its fixed 109-byte wire layout.
func EncodeTransaction(t Transaction) []byte {
	buf := make([]byte, TransactionSize)
	copy(buf, canonicalFields(t))
	copy(buf[TransactionSize-HashSize:], t.Hash[:])
	return buf
}

// DecodeTransaction parses a 109-byte buffer into a Transaction. ok is
// false if b is shorter than TransactionSize.
func DecodeTransaction(b []byte) (Transaction, bool) {
	if len(b) < TransactionSize {
		return Transaction{}, false
	}
	t := Transaction{
		NodeID:    binary.LittleEndian.Uint16(b[0:2]),
		ClientID:  binary.LittleEndian.Uint16(b[2:4]),
		DataName:  readName(b[4 : 4+DataNameSize]),
		Operation: CacheOperation(b[4+DataNameSize]),
		Timestamp: binary.LittleEndian.Uint64(b[5+DataNameSize : 13+DataNameSize]),
	}
	copy(t.Hash[:], b[TransactionSize-HashSize:TransactionSize])
	return t, true
}
