// Package digest provides the canonical hashing support for the ledger. Every
// block digest in the system is produced by this package so two nodes always
// derive the same digest from the same field values.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros. It is used as the previous
// hash of the genesis block.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// hexLen is the length of an encoded digest: the 0x prefix followed by 64
// hex nibbles.
const hexLen = 66

// =============================================================================

// Hash returns the hex encoded SHA-256 of the canonical encoding of value.
func Hash(value any) (string, error) {
	data, err := Canonical(value)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:]), nil
}

// Canonical returns a JSON encoding of value where the keys of every object
// are written in lexicographic order. Numbers keep the exact text produced by
// the first encoding pass.
func Canonical(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// Decoding into generic values turns every object into a map, and the
	// encoder always writes map keys sorted.
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var generic any
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	data, err = json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("re-marshal: %w", err)
	}

	return data, nil
}

// =============================================================================

// LeadingZeros returns the number of leading zero hex nibbles in the hash.
// A malformed hash reports -1.
func LeadingZeros(hash string) int {
	if !wellFormed(hash) {
		return -1
	}

	nibbles := hash[2:]
	return len(nibbles) - len(strings.TrimLeft(nibbles, "0"))
}

// IsSolved checks the hash complies with the POW rules. Difficulty is the
// number of leading zero hex nibbles after the 0x prefix. A difficulty
// larger than 64 can never be solved.
func IsSolved(hash string, difficulty uint) bool {
	zeros := LeadingZeros(hash)
	if zeros < 0 {
		return false
	}

	return uint(zeros) >= difficulty
}

// wellFormed validates the hash is 0x followed by 64 lowercase hex nibbles.
func wellFormed(hash string) bool {
	if len(hash) != hexLen || !strings.HasPrefix(hash, "0x") {
		return false
	}

	for _, c := range hash[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}

	return true
}
