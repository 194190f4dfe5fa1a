// Package signature provides helper functions for handling the ledger's
// digest and signature needs.
package signature

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	sha256 "github.com/minio/sha256-simd"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// ledgerID is an arbitrary number for signing messages. This will make it
// clear that the signature comes from this ledger. Ethereum and Bitcoin do
// this as well, but they use the value of 27.
const ledgerID = 29

// Set of error variables for signature verification.
var (
	ErrMalformedSignature = errors.New("malformed signature")
	ErrSignatureMismatch  = errors.New("signature does not match the signer")
)

// =============================================================================

// Digest returns the SHA-256 digest of the specified content.
func Digest(content string) []byte {
	sum := sha256.Sum256([]byte(content))
	return sum[:]
}

// Hash returns a unique hex string for the value based on its JSON form.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Sign uses the specified private key to sign the digest. The signature is
// returned in the 65 byte [R|S|V] format with the ledger id added to V.
func Sign(digest []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {

	// Prepare the data for signing.
	data := stamp(digest)

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, err
	}

	// Extract the public key from the data and the signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, err
	}

	// Check the public key extracted from the data and signature.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return nil, errors.New("invalid signature")
	}

	sig[crypto.RecoveryIDOffset] += ledgerID

	return sig, nil
}

// Verify checks the signature is well formed and was produced over the
// digest by the private key behind the specified address.
func Verify(digest []byte, sig []byte, address string) error {
	signer, err := FromAddress(digest, sig)
	if err != nil {
		return err
	}

	if signer != address {
		return fmt.Errorf("%w: got %s, exp %s", ErrSignatureMismatch, signer, address)
	}

	return nil
}

// FromAddress extracts the address for the account that signed the digest.
func FromAddress(digest []byte, sig []byte) (string, error) {

	// NOTE: If the same exact digest for the given signature is not provided
	// we will get the wrong address back. The public key is being extracted
	// from the data and signature.

	raw, err := toRecoverable(sig)
	if err != nil {
		return "", err
	}

	// Capture the public key associated with this data and signature.
	publicKey, err := crypto.SigToPub(stamp(digest), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedSignature, err)
	}

	// Extract the account address from the public key.
	return crypto.PubkeyToAddress(*publicKey).String(), nil
}

// =============================================================================

// toRecoverable validates the ledger signature and converts it back into the
// 65 byte format go-ethereum expects, with the ledger id removed from V.
func toRecoverable(sig []byte) ([]byte, error) {
	if len(sig) != crypto.SignatureLength {
		return nil, fmt.Errorf("%w: length %d", ErrMalformedSignature, len(sig))
	}

	// Check the recovery id is either 0 or 1.
	v := sig[crypto.RecoveryIDOffset] - ledgerID
	if v != 0 && v != 1 {
		return nil, fmt.Errorf("%w: invalid recovery id", ErrMalformedSignature)
	}

	// Check the signature values are valid.
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, false) {
		return nil, fmt.Errorf("%w: invalid signature values", ErrMalformedSignature)
	}

	raw := make([]byte, crypto.SignatureLength)
	copy(raw, sig)
	raw[crypto.RecoveryIDOffset] = v

	return raw, nil
}

// stamp returns a hash of 32 bytes that represents the digest with the
// ledger stamp embedded into the final hash.
func stamp(digest []byte) []byte {

	// Hash the digest into a 32 byte array. This will provide a data length
	// consistency no matter what digest function produced the input.
	txHash := crypto.Keccak256(digest)

	// This stamp is used so signatures we produce when signing data are
	// always unique to this ledger.
	stamp := []byte("\x19Ledger Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256(stamp, txHash)
}
