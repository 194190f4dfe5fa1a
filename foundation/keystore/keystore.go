// Package keystore maintains the ECDSA key pair behind every node identity
// that signs transactions. Keys can live only in memory or be kept as
// <node-id>.ecdsa files in a folder.
package keystore

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// keyExtension is the file extension used for private key files.
const keyExtension = ".ecdsa"

// ErrUnknownNode is returned when no key pair exists for a node identity.
var ErrUnknownNode = errors.New("no key pair for node")

// KeyStore maps node identities to their private keys.
type KeyStore struct {
	folder string
	mu     sync.RWMutex
	keys   map[string]*ecdsa.PrivateKey
}

// New constructs a key store. When a folder is provided every key file in
// that folder is loaded and newly generated keys are saved there.
func New(folder string) (*KeyStore, error) {
	ks := KeyStore{
		folder: folder,
		keys:   make(map[string]*ecdsa.PrivateKey),
	}

	if folder == "" {
		return &ks, nil
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("creating key folder: %w", err)
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if filepath.Ext(fileName) != keyExtension {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		ks.keys[strings.TrimSuffix(filepath.Base(fileName), keyExtension)] = privateKey

		return nil
	}

	if err := filepath.Walk(folder, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ks, nil
}

// GenerateKeypair makes sure a key pair exists for the node identity. An
// existing key is reused so a node keeps its identity across restarts.
func (ks *KeyStore) GenerateKeypair(nodeID string) error {
	if nodeID == "" {
		return errors.New("node id is required")
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	if _, exists := ks.keys[nodeID]; exists {
		return nil
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}

	if ks.folder != "" {
		if err := crypto.SaveECDSA(ks.path(nodeID), privateKey); err != nil {
			return fmt.Errorf("saving key: %w", err)
		}
	}

	ks.keys[nodeID] = privateKey

	return nil
}

// Sign signs the digest with the private key of the node identity.
func (ks *KeyStore) Sign(digest []byte, nodeID string) ([]byte, error) {
	ks.mu.RLock()
	privateKey, exists := ks.keys[nodeID]
	ks.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}

	return signature.Sign(digest, privateKey)
}

// Verify checks the signature over the digest was produced by the node
// identity. A malformed signature or an unknown node returns an error.
func (ks *KeyStore) Verify(digest []byte, sig []byte, nodeID string) error {
	address, err := ks.Address(nodeID)
	if err != nil {
		return err
	}

	return signature.Verify(digest, sig, address)
}

// Address returns the account address derived from the node's public key.
func (ks *KeyStore) Address(nodeID string) (string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	privateKey, exists := ks.keys[nodeID]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}

	return crypto.PubkeyToAddress(privateKey.PublicKey).String(), nil
}

// Copy returns a copy of the node identities and their addresses.
func (ks *KeyStore) Copy() map[string]string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	cpy := make(map[string]string, len(ks.keys))
	for nodeID, privateKey := range ks.keys {
		cpy[nodeID] = crypto.PubkeyToAddress(privateKey.PublicKey).String()
	}
	return cpy
}

// path forms the path to the key file for the node identity.
func (ks *KeyStore) path(nodeID string) string {
	return filepath.Join(ks.folder, nodeID+keyExtension)
}
