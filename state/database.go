// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"errors"
	"fmt"
	"log"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/Fantom-foundation/LedgerDB/common"
	"github.com/Fantom-foundation/LedgerDB/common/amount"
)

// Database aggregates the three typed stores of a ledger node: account
// state, transaction records, and election claims. It is the exclusive
// owner of all three.
//
// The writer path of each store runs on one logical state-update thread.
// There are no cross-store transactions: an update spanning two stores is
// two independent, non-atomic operations, and a crash between them can
// leave the backups inconsistent. Callers needing atomicity across stores
// must build it at a higher layer.
type Database struct {
	accounts     *StateStore
	transactions *TransactionStore
	claims       *ClaimStore
	config       Config
}

// NewDatabase creates a database under the given configuration. Each store
// is restored from its backup path if one is present; otherwise it starts
// empty. Restoration failures surface here as ErrBackupIO.
func NewDatabase(config Config) (*Database, error) {
	db := &Database{
		accounts:     NewStateStore(),
		transactions: NewTransactionStore(),
		claims:       NewClaimStore(),
		config:       config,
	}
	entries, err := restoreBackup(config.stateBackupPath())
	if err != nil {
		return nil, err
	}
	db.accounts.restore(entries)

	entries, err = restoreBackup(config.transactionBackupPath())
	if err != nil {
		return nil, err
	}
	db.transactions.restore(entries)

	entries, err = restoreBackup(config.claimBackupPath())
	if err != nil {
		return nil, err
	}
	db.claims.restore(entries)

	return db, nil
}

// InsertAccount adds a new account, failing with ErrAlreadyExists if the
// address is occupied in the current snapshot.
func (d *Database) InsertAccount(address common.Address, account Account) error {
	return d.accounts.Insert(address, account)
}

// UpdateAccount applies a per-field delta to an existing account.
func (d *Database) UpdateAccount(args UpdateArgs) error {
	return d.accounts.UpdateAccount(args)
}

// ExtendAccounts queues a batch of account inserts.
func (d *Database) ExtendAccounts(pairs []Pair[common.Address, Account]) {
	d.accounts.Extend(pairs)
}

// InsertTransaction records a transaction under its digest.
func (d *Database) InsertTransaction(txn Transaction) error {
	return d.transactions.Insert(txn)
}

// ExtendTransactions queues a batch of transaction records.
func (d *Database) ExtendTransactions(txns []Transaction) {
	d.transactions.Extend(txns)
}

// InsertClaim records a claim under its content hash.
func (d *Database) InsertClaim(claim Claim) error {
	return d.claims.Insert(claim)
}

// ExtendClaims queues a batch of claims.
func (d *Database) ExtendClaims(claims []Claim) {
	d.claims.Extend(claims)
}

// SlashClaim marks the claim with the given hash ineligible.
func (d *Database) SlashClaim(hash common.Hash) error {
	return d.claims.Slash(hash)
}

// RemoveClaim queues the deletion of an abandoned claim.
func (d *Database) RemoveClaim(hash common.Hash) {
	d.claims.Remove(hash)
}

// CommitAccounts publishes all queued account operations.
func (d *Database) CommitAccounts() {
	d.accounts.Commit()
}

// CommitTransactions publishes all queued transaction operations.
func (d *Database) CommitTransactions() {
	d.transactions.Commit()
}

// CommitClaims publishes all queued claim operations.
func (d *Database) CommitClaims() {
	d.claims.Commit()
}

// Commit publishes all queued operations of all three stores. The three
// refreshes are still independent commit points, not one transaction.
func (d *Database) Commit() {
	d.accounts.Commit()
	d.transactions.Commit()
	d.claims.Commit()
}

// StateRootHash returns the root hash of the account state snapshot.
func (d *Database) StateRootHash() common.Hash {
	return d.accounts.RootHash()
}

// TransactionsRootHash returns the root hash of the transaction snapshot.
func (d *Database) TransactionsRootHash() common.Hash {
	return d.transactions.RootHash()
}

// ClaimsRootHash returns the root hash of the claim snapshot.
func (d *Database) ClaimsRootHash() common.Hash {
	return d.claims.RootHash()
}

// StateStoreFactory produces a reader factory into the account state.
func (d *Database) StateStoreFactory() StateStoreReadHandleFactory {
	return d.accounts.Factory()
}

// TransactionStoreFactory produces a reader factory into the transaction
// ledger.
func (d *Database) TransactionStoreFactory() TransactionStoreReadHandleFactory {
	return d.transactions.Factory()
}

// ClaimStoreFactory produces a reader factory into the claim set.
func (d *Database) ClaimStoreFactory() ClaimStoreReadHandleFactory {
	return d.claims.Factory()
}

// ReadHandle returns a unified read handle over all three stores.
func (d *Database) ReadHandle() DatabaseReadHandle {
	return DatabaseReadHandle{
		state:        d.accounts.Factory(),
		transactions: d.transactions.Factory(),
		claims:       d.claims.Factory(),
	}
}

// ApplyTransactions applies a batch of confirmed transfers: each debits the
// sender (bumping its nonce), credits the receiver (creating the account if
// absent), and is recorded in the transaction store. The whole batch is
// validated against the current snapshot first; an invalid transfer rejects
// the batch before anything is queued.
//
// Account and transaction stores are committed independently; see the type
// documentation for the resulting consistency caveat.
func (d *Database) ApplyTransactions(batch []Transaction) error {
	handle := d.accounts.Factory().Handle()
	working := make(map[common.Address]Account)

	load := func(address common.Address) (Account, bool) {
		if account, exists := working[address]; exists {
			return account, true
		}
		account, err := handle.Get(address)
		if err != nil {
			return Account{}, false
		}
		return account, true
	}

	for i, txn := range batch {
		sender, exists := load(txn.Sender)
		if !exists {
			return fmt.Errorf("%w: sender %v of transaction %d", common.ErrNotFound, txn.Sender, i)
		}
		balance, underflow := amount.SubUnderflow(sender.Balance, txn.Amount)
		if underflow {
			return fmt.Errorf("transaction %d: insufficient balance on %v", i, txn.Sender)
		}
		sender.Balance = balance
		sender.Nonce++
		working[txn.Sender] = sender

		receiver, _ := load(txn.Receiver)
		credited, overflow := amount.AddOverflow(receiver.Balance, txn.Amount)
		if overflow {
			return fmt.Errorf("transaction %d: balance overflow on %v", i, txn.Receiver)
		}
		receiver.Balance = credited
		working[txn.Receiver] = receiver
	}

	// queue updates in address order so replayed batches produce the
	// same operation log
	touched := maps.Keys(working)
	slices.SortFunc(touched, func(a, b common.Address) bool {
		return a.Compare(&b) < 0
	})
	var errs []error
	for _, address := range touched {
		if err := d.accounts.Update(address, working[address]); err != nil {
			errs = append(errs, err)
		}
	}
	for _, txn := range batch {
		if err := d.transactions.Insert(txn); err != nil {
			log.Printf("state: skipping duplicate transaction %v: %v", txn.Digest(), err)
		}
	}
	d.accounts.Commit()
	d.transactions.Commit()
	return errors.Join(errs...)
}

// Flush writes each store's current snapshot to its backup path. Stores
// without a configured path are skipped.
func (d *Database) Flush() error {
	var errs []error
	if path := d.config.stateBackupPath(); path != "" {
		errs = append(errs, flushBackup(path, d.accounts.Factory().Handle().rawEntries()))
	}
	if path := d.config.transactionBackupPath(); path != "" {
		errs = append(errs, flushBackup(path, d.transactions.Factory().Handle().rawEntries()))
	}
	if path := d.config.claimBackupPath(); path != "" {
		errs = append(errs, flushBackup(path, d.claims.Factory().Handle().rawEntries()))
	}
	return errors.Join(errs...)
}

// Close flushes all backups. The database must not be used afterwards.
func (d *Database) Close() error {
	return d.Flush()
}

// DatabaseReadHandle bundles one read-handle factory per store. It may be
// cloned and handed to any number of reader threads.
type DatabaseReadHandle struct {
	state        StateStoreReadHandleFactory
	transactions TransactionStoreReadHandleFactory
	claims       ClaimStoreReadHandleFactory
}

// StateHandle pins a view of the account state.
func (h DatabaseReadHandle) StateHandle() StateStoreReadHandle {
	return h.state.Handle()
}

// TransactionHandle pins a view of the transaction ledger.
func (h DatabaseReadHandle) TransactionHandle() TransactionStoreReadHandle {
	return h.transactions.Handle()
}

// ClaimHandle pins a view of the claim set.
func (h DatabaseReadHandle) ClaimHandle() ClaimStoreReadHandle {
	return h.claims.Handle()
}

// GetAccountByAddress looks up an account in the latest state snapshot.
func (h DatabaseReadHandle) GetAccountByAddress(address common.Address) (Account, error) {
	return h.state.Handle().Get(address)
}

// GetTransaction looks up a transaction record by digest.
func (h DatabaseReadHandle) GetTransaction(digest common.Hash) (Transaction, error) {
	return h.transactions.Handle().Get(digest)
}

// GetClaim looks up a claim by content hash.
func (h DatabaseReadHandle) GetClaim(hash common.Hash) (Claim, error) {
	return h.claims.Handle().Get(hash)
}
