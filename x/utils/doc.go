/*
Package utils contains decorators shared by all transactions: a savepoint
that rolls back failed transactions, panic recovery, logging and metrics.
*/
package utils
