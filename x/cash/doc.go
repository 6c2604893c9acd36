/*
Package cash holds the wallets of all accounts and moves coins between
them. It is the asset transfer mechanism used by the vaults: a deposit
moves the coins from the user wallet into the vault custody address and a
withdrawal moves them back.
*/
package cash
