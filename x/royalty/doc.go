/*
Package royalty implements pull based royalty pools.

Each tokenized asset owns a single pool. Funds received by a pool are kept in
the royalty escrow account and every active beneficiary can withdraw the part
of all funds ever received that corresponds to its share, minus what it has
withdrawn already:

	withdrawable = floor(totalReceived * shareBps / 10000) - withdrawn

A pool always satisfies totalReceived == totalDistributed + pendingDistribution.

Operations that move value out of the escrow first update the ledger and
then transfer. They run within a single cache wrap, so a failed transfer
leaves no trace, and hold a guard that rejects any call entering the
controller while the transfer is in progress.
*/
package royalty
