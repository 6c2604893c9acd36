/*
Package collateral is the registry of real world assets, coffee batches,
that secure loans. An asset is created by its owner, linked to a single
loan when its value satisfies the collateral ratio, and ends either
liquidated by the committee or expired by the administrator.
*/
package collateral
