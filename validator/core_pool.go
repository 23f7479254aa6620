// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package validator

import (
	"fmt"
	"sync"

	"github.com/Fantom-foundation/LedgerDB/state"
)

// Outcome is the validation verdict for one transaction. A nil Err means
// the transaction passed every check.
type Outcome struct {
	Transaction state.Transaction
	Err         error
}

// CorePool validates transaction batches on a fixed number of workers. All
// transactions of one batch are checked against the same pinned state
// view, so the verdicts do not depend on worker count or scheduling.
type CorePool struct {
	cores int
}

// NewCorePool creates a pool running validations on the given number of
// workers.
func NewCorePool(cores int) (*CorePool, error) {
	if cores < 1 {
		return nil, fmt.Errorf("invalid number of validation cores: %d", cores)
	}
	return &CorePool{cores: cores}, nil
}

// Cores returns the pool's worker count.
func (p *CorePool) Cores() int {
	return p.cores
}

// Validate checks every transaction of the batch against the given state
// view and returns one outcome per transaction, in batch order. A panic
// while checking one transaction is contained and reported as that
// transaction's outcome.
func (p *CorePool) Validate(reader StateReader, batch []state.Transaction) []Outcome {
	outcomes := make([]Outcome, len(batch))
	if len(batch) == 0 {
		return outcomes
	}
	validator := NewTxnValidator(reader)

	jobs := make(chan int, len(batch))
	for i := range batch {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(p.cores)
	for c := 0; c < p.cores; c++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = Outcome{
					Transaction: batch[i],
					Err:         validate(validator, batch[i]),
				}
			}
		}()
	}
	wg.Wait()
	return outcomes
}

func validate(validator TxnValidator, txn state.Transaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validation panicked: %v", r)
		}
	}()
	return validator.Validate(txn)
}
