// Package core's crypto adapter: Ed25519 key generation, signing and
// verification. Grounded on core/security.go's Sign/Verify (Ed25519
// branch); narrowed to Ed25519 only since this system has no validator
// set requiring BLS aggregation.
package core

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// KeyPair is a node's Ed25519 signing identity.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateKeyPair creates a fresh Ed25519 key pair from system entropy.
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("core: generate keypair: %w", err)
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// Sign signs msg with kp's private key, returning the 64-byte signature.
func Sign(kp KeyPair, msg []byte) [SignatureSize]byte {
	var sig [SignatureSize]byte
	copy(sig[:], ed25519.Sign(kp.Private, msg))
	return sig
}

// Verify reports whether sig is a valid Ed25519 signature over msg under
// pub. A malformed or wrong-length public key verifies false rather than
// panicking.
func Verify(pub []byte, msg []byte, sig [SignatureSize]byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig[:])
}
