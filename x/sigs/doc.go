/*
Package sigs provides basic authentication middleware to verify the ed25519
signatures on the transaction, and maintain sequences for replay protection.

Every public key is represented by the condition

	sigs/ed25519/<sha256(pubkey)>

and the address derived from it.
*/
package sigs
