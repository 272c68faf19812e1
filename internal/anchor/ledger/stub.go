package ledger

import (
	"context"
	"fmt"
	"sync"
)

// StubLedger is an in-memory ledger for development and tests. It records
// every submitted fingerprint, hands out sequential fake transaction IDs and
// block numbers, and can be primed to fail either phase.
type StubLedger struct {
	mu         sync.Mutex
	submitted  map[string]string
	blocks     map[string]int64
	submits    int
	nextTx     int
	nextBlock  int64
	submitErr  error
	confirmErr error
}

// NewStub creates an empty stub ledger starting at block 1.
func NewStub() *StubLedger {
	return &StubLedger{
		submitted: make(map[string]string),
		blocks:    make(map[string]int64),
		nextBlock: 1,
	}
}

// FailSubmit primes the next Submit calls to return err. Pass nil to restore
// normal behavior.
func (l *StubLedger) FailSubmit(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitErr = err
}

// FailConfirm primes the next AwaitConfirmation calls to return err.
func (l *StubLedger) FailConfirm(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.confirmErr = err
}

// SetNextBlock fixes the block number the next confirmation reports.
func (l *StubLedger) SetNextBlock(n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextBlock = n
}

// SubmitCount reports how many Submit calls reached the ledger, rejected ones
// included. Duplicate submissions of the same fingerprint count separately.
func (l *StubLedger) SubmitCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.submits
}

// Contains reports whether a fingerprint was submitted.
func (l *StubLedger) Contains(fingerprint string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.submitted[fingerprint]
	return ok
}

// Submit records the fingerprint and returns a fake transaction ID.
func (l *StubLedger) Submit(ctx context.Context, fingerprint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submits++
	if l.submitErr != nil {
		return "", l.submitErr
	}
	l.nextTx++
	txID := fmt.Sprintf("tx%d", l.nextTx)
	l.submitted[fingerprint] = txID
	return txID, nil
}

// AwaitConfirmation returns the next block number for a submitted transaction.
func (l *StubLedger) AwaitConfirmation(ctx context.Context, txID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.confirmErr != nil {
		return 0, l.confirmErr
	}
	if block, ok := l.blocks[txID]; ok {
		return block, nil
	}
	block := l.nextBlock
	l.nextBlock++
	l.blocks[txID] = block
	return block, nil
}

var _ Ledger = (*StubLedger)(nil)
