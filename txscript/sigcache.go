// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"
)

// sigCacheEntry represents an entry in the SigCache.  Entries in the sigcache
// are a 3-tuple: (sigHash, sig, pubKey).
type sigCacheEntry struct {
	sigHash chainhash.Hash
	sig     string
	pubKey  string
}

// SigCache implements an ECDSA signature verification cache with a least
// recently used eviction policy.  Only valid signatures will be added to the
// cache.  The benefits of SigCache are two fold.  Firstly, usage of SigCache
// mitigates a DoS attack wherein an attack causes a victim's client to hang
// due to worst-case behavior triggered while processing attacker crafted
// invalid transactions.  Secondly, usage of the SigCache introduces a
// signature verification optimization which speeds up the validation of
// transactions that spend the same outputs more than once, such as when the
// same transaction is verified in the mempool and again within a block.
//
// The cache is safe for concurrent access.
type SigCache struct {
	validSigs lru.Cache
}

// NewSigCache creates and initializes a new instance of SigCache.  Its sole
// parameter 'maxEntries' represents the maximum number of entries allowed to
// exist in the SigCache at any particular moment.  The least recently used
// entry is evicted to make room for new entries that would cause the number
// of entries in the cache to exceed the max.
func NewSigCache(maxEntries uint) *SigCache {
	return &SigCache{validSigs: lru.NewCache(maxEntries)}
}

// newSigCacheEntry builds the cache key for sig over sigHash under pubKey.
func newSigCacheEntry(sigHash *chainhash.Hash, sig *ecdsa.Signature,
	pubKey *btcec.PublicKey) sigCacheEntry {

	return sigCacheEntry{
		sigHash: *sigHash,
		sig:     string(sig.Serialize()),
		pubKey:  string(pubKey.SerializeCompressed()),
	}
}

// Exists returns true if an existing entry of 'sig' over 'sigHash' for public
// key 'pubKey' is found within the SigCache.  Otherwise, false is returned.
func (s *SigCache) Exists(sigHash *chainhash.Hash, sig *ecdsa.Signature,
	pubKey *btcec.PublicKey) bool {

	return s.validSigs.Contains(newSigCacheEntry(sigHash, sig, pubKey))
}

// Add adds an entry for a signature over 'sigHash' under public key 'pubKey'
// to the signature cache.
func (s *SigCache) Add(sigHash *chainhash.Hash, sig *ecdsa.Signature,
	pubKey *btcec.PublicKey) {

	s.validSigs.Add(newSigCacheEntry(sigHash, sig, pubKey))
}
