package keystore_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/keystore"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_KeyStore(t *testing.T) {
	t.Log("Given the need to sign and verify with node identities.")
	{
		folder := t.TempDir()

		ks, err := keystore.New(folder)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a key store: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to construct a key store.", success)

		if err := ks.GenerateKeypair("node1"); err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key pair: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to generate a key pair.", success)

		digest := signature.Digest("content")
		sig, err := ks.Sign(digest, "node1")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %s", failed, err)
		}

		if err := ks.Verify(digest, sig, "node1"); err != nil {
			t.Fatalf("\t%s\tShould be able to verify: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to sign and verify.", success)

		if _, err := ks.Sign(digest, "node2"); !errors.Is(err, keystore.ErrUnknownNode) {
			t.Fatalf("\t%s\tShould not sign for an unknown node: %v", failed, err)
		}
		t.Logf("\t%s\tShould not sign for an unknown node.", success)

		addr, err := ks.Address("node1")
		if err != nil {
			t.Fatalf("\t%s\tShould get the node address: %s", failed, err)
		}

		reloaded, err := keystore.New(folder)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reload the key store: %s", failed, err)
		}

		got, err := reloaded.Address("node1")
		if err != nil || got != addr {
			t.Logf("\t\tgot: %s", got)
			t.Logf("\t\texp: %s", addr)
			t.Fatalf("\t%s\tShould load the same identity from disk: %v", failed, err)
		}
		t.Logf("\t%s\tShould load the same identity from disk.", success)

		if err := reloaded.Verify(digest, sig, "node1"); err != nil {
			t.Fatalf("\t%s\tShould verify with the reloaded key: %s", failed, err)
		}
		t.Logf("\t%s\tShould verify with the reloaded key.", success)
	}
}
