/*
Package params holds the protocol parameters that token holders can change
through governance proposals. Other extensions read the current values
with Controller.Params.
*/
package params
