/*
Package ledger implements the rebasing yield token.

Every holder has a balance record with a principal, an annual yield rate
in basis points and the time of the last accrual. Accrual compounds the
principal once per whole day elapsed:

	daily = rate / 365
	principal += principal * daily / 10000

Both divisions truncate. Only authorized minters, the vault custody
addresses, can mint and burn. The sum of all principals always equals the
total supply.
*/
package ledger
