// Package ledger defines the narrow capability the anchoring workflow needs
// from an external immutable ledger. Building an actual chain client is out of
// scope; production deployments plug in an adapter for their network.
package ledger

import "context"

// Ledger is the external publish capability: a two-phase
// submit-then-await-confirmation operation. Both calls may block for seconds
// to minutes and must honor context cancellation.
type Ledger interface {
	// Submit sends the fingerprint to the ledger and returns the transaction
	// identifier. A returned error means the submission was rejected; whether
	// the transaction nevertheless reached the network is unknown, so callers
	// must not blindly retry.
	Submit(ctx context.Context, fingerprint string) (txID string, err error)

	// AwaitConfirmation blocks until the transaction is included in a block
	// and returns the block number. The caller bounds the wait through ctx.
	AwaitConfirmation(ctx context.Context, txID string) (blockNumber int64, err error)
}
