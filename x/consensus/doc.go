/*
Package consensus implements the committee and token weighted decisions of
the protocol.

A committee of five members approves loan proposals and executes trade
proposals. Three distinct approvals move a loan from Pending to Approved,
an explicit execution then verifies the collateral and marks it Executed.

Any holder of enough ledger tokens may propose a change of a protocol
parameter. Votes are weighted by the ledger balance at the time of the
vote. After the seven day voting period the proposal is executed if more
weight voted for than against, otherwise it is rejected.

Proposal ids are sha256 digests of the proposal content and the block
time. Approval and vote marks are never deleted.
*/
package consensus
