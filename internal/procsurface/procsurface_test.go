// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package procsurface

import (
	"context"
	"testing"

	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/indexer"
	"github.com/RenAndKiwi/nostring/hdkeychain"
	"github.com/RenAndKiwi/nostring/shamir"
	"github.com/RenAndKiwi/nostring/store"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

type fakeIndexer struct {
	utxos []indexer.Utxo
}

func (f *fakeIndexer) TipHeight(ctx context.Context) (uint32, error) { return 1000, nil }
func (f *fakeIndexer) ScriptHistory(ctx context.Context, s []byte) ([]indexer.HistoryEntry, error) {
	return nil, nil
}
func (f *fakeIndexer) ScriptUtxos(ctx context.Context, s []byte) ([]indexer.Utxo, error) {
	return f.utxos, nil
}
func (f *fakeIndexer) GetTransaction(ctx context.Context, txid chainhash.Hash) ([]byte, error) {
	return nil, nil
}
func (f *fakeIndexer) Broadcast(ctx context.Context, raw []byte) (chainhash.Hash, error) {
	return chainhash.Hash{}, nil
}
func (f *fakeIndexer) Status() indexer.Status { return indexer.StatusOK }

func newTestDispatcher(t *testing.T, idx indexer.Client) *Dispatcher {
	t.Helper()
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	if idx == nil {
		idx = &fakeIndexer{}
	}
	return NewDispatcher(NewSession(s, idx, chaincfg.TestNetParams, 2.0))
}

// testHeirXpub derives an unrelated account xpub to use as a heir key,
// entirely separate from the wallet under test's own seed.
func testHeirXpub(t *testing.T, seedByte byte) string {
	t.Helper()
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = seedByte
	}
	master, err := hdkeychain.NewMaster(seed, chaincfg.TestNetParams)
	if err != nil {
		t.Fatal(err)
	}
	account, err := hdkeychain.Derive(master, hdkeychain.BIP84AccountPath(chaincfg.TestNetParams.HDCoinType))
	if err != nil {
		t.Fatal(err)
	}
	neutered, err := account.Neuter(chaincfg.TestNetParams)
	if err != nil {
		t.Fatal(err)
	}
	return neutered.String()
}

func unlockedDispatcher(t *testing.T, idx indexer.Client) *Dispatcher {
	t.Helper()
	d := newTestDispatcher(t, idx)
	res := d.CreateSeed(NewCreateSeedCmd(12))
	if !res.Success {
		t.Fatalf("create_seed failed: %+v", res.Error)
	}
	mnemonic := res.Data.(map[string]string)["mnemonic"]
	if res := d.ImportSeed(NewImportSeedCmd(mnemonic, "correct horse battery staple")); !res.Success {
		t.Fatalf("import_seed failed: %+v", res.Error)
	}
	if res := d.Unlock(NewUnlockCmd("correct horse battery staple")); !res.Success {
		t.Fatalf("unlock failed: %+v", res.Error)
	}
	return d
}

func TestWalletLifecycle(t *testing.T) {
	d := newTestDispatcher(t, nil)

	if res := d.HasWallet(NewHasWalletCmd()); res.Data.(map[string]bool)["has_wallet"] {
		t.Fatal("expected no wallet before create_seed/import_seed")
	}

	res := d.CreateSeed(NewCreateSeedCmd(12))
	if !res.Success {
		t.Fatalf("create_seed failed: %+v", res.Error)
	}
	mnemonic := res.Data.(map[string]string)["mnemonic"]
	if mnemonic == "" {
		t.Fatal("expected a non-empty mnemonic")
	}

	if res := d.ImportSeed(NewImportSeedCmd(mnemonic, "pw")); !res.Success {
		t.Fatalf("import_seed failed: %+v", res.Error)
	}

	if res := d.HasWallet(NewHasWalletCmd()); !res.Data.(map[string]bool)["has_wallet"] {
		t.Fatal("expected has_wallet true after import_seed")
	}

	if res := d.Unlock(NewUnlockCmd("wrong password")); res.Success {
		t.Fatal("expected unlock with the wrong password to fail")
	}

	if res := d.Unlock(NewUnlockCmd("pw")); !res.Success {
		t.Fatalf("unlock failed: %+v", res.Error)
	}

	if res := d.Lock(NewLockCmd()); !res.Success {
		t.Fatalf("lock failed: %+v", res.Error)
	}
	if res := d.BuildCheckinPsbt(NewBuildCheckinPsbtCmd()); res.Success {
		t.Fatal("expected build_checkin_psbt to fail while locked")
	}
}

func TestAddHeirRecompilesDescriptor(t *testing.T) {
	d := unlockedDispatcher(t, nil)

	heirXpub := testHeirXpub(t, 0x02)
	res := d.AddHeir(NewAddHeirCmd("alice", heirXpub, "84h/1h/0h", 26280, "", ""))
	if !res.Success {
		t.Fatalf("add_heir failed: %+v", res.Error)
	}

	listRes := d.ListHeirs(NewListHeirsCmd())
	heirs := listRes.Data.([]store.Heir)
	if len(heirs) != 1 || heirs[0].Label != "alice" {
		t.Fatalf("expected one heir named alice, got %+v", heirs)
	}
	if d.Session.descriptor == nil {
		t.Fatal("expected descriptor to be compiled after add_heir")
	}

	fp := heirs[0].Fingerprint
	if res := d.RemoveHeir(NewRemoveHeirCmd(fp)); !res.Success {
		t.Fatalf("remove_heir failed: %+v", res.Error)
	}
	if d.Session.descriptor != nil {
		t.Fatal("expected descriptor to be cleared once the only heir is removed")
	}
}

func TestBuildCheckinPsbtHappyPath(t *testing.T) {
	idx := &fakeIndexer{}
	d := unlockedDispatcher(t, idx)

	heirXpub := testHeirXpub(t, 0x03)
	if res := d.AddHeir(NewAddHeirCmd("bob", heirXpub, "84h/1h/0h", 26280, "", "")); !res.Success {
		t.Fatalf("add_heir failed: %+v", res.Error)
	}

	scriptPubKey, err := watchedScriptPubKey(d.Session.descriptor, 0)
	if err != nil {
		t.Fatal(err)
	}
	idx.utxos = []indexer.Utxo{{
		Txid:         chainhash.Hash{0xAA},
		Vout:         0,
		AmountSats:   1_000_000,
		Height:       900,
		ScriptPubKey: scriptPubKey,
	}}

	if res := d.RefreshStatus(NewRefreshStatusCmd()); !res.Success {
		t.Fatalf("refresh_status failed: %+v", res.Error)
	}
	if d.Session.activeUtxo == nil {
		t.Fatal("expected refresh_status to pick up the fake UTXO")
	}

	res := d.BuildCheckinPsbt(NewBuildCheckinPsbtCmd())
	if !res.Success {
		t.Fatalf("build_checkin_psbt failed: %+v", res.Error)
	}
}

func TestGenerateAndCombineShares(t *testing.T) {
	d := newTestDispatcher(t, nil)
	secret := []byte("0123456789abcdef0123456789abcdef")

	res := d.GenerateShares(NewGenerateSharesCmd(shamir.SchemeCodex32, 2, 3, "test", secret))
	require.True(t, res.Success, "generate_shares: %+v", res.Error)
	shares := res.Data.(map[string]interface{})["shares"].([]string)
	require.Len(t, shares, 3)

	combined := d.CombineShares(NewCombineSharesCmd(shares[:2]))
	require.True(t, combined.Success, "combine_shares: %+v", combined.Error)
	require.Equal(t, hexEncode(secret), combined.Data.(map[string]string)["secret"])
}

func TestPresignedStackOperations(t *testing.T) {
	d := newTestDispatcher(t, nil)

	if res := d.PresignedList(NewPresignedListCmd()); !res.Success {
		t.Fatalf("presigned_list failed: %+v", res.Error)
	}

	if res := d.PresignedInvalidate(NewPresignedInvalidateCmd()); !res.Success {
		t.Fatalf("presigned_invalidate failed: %+v", res.Error)
	}
	if res := d.PresignedClear(NewPresignedClearCmd()); !res.Success {
		t.Fatalf("presigned_clear failed: %+v", res.Error)
	}
}
