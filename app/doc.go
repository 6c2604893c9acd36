/*
Package app contains the ABCI application glue: the commit store with its
check and deliver caches, the message router, the decorator chain and the
BaseApp that dispatches CheckTx, DeliverTx and BeginBlock to them.

The concrete arabica chain is assembled in cmd/arabicad/app.
*/
package app
