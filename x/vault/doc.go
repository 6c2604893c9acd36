/*
Package vault implements time-locked deposits backed by the yield ledger.

A vault is either stable, accepting a single asset at face value, or priced,
accepting a list of assets valued through the oracle. Every user can hold
one deposit per vault. A deposit moves the asset into the vault custody,
records the unlock time and mints ledger tokens worth the deposit value.
Withdrawal is possible once the lock expired and releases the asset worth
the accrued ledger balance.

	NoDeposit -> Locked -> Unlockable -> NoDeposit
*/
package vault
