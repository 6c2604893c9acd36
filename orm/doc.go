/*
Package orm provides an easy to use db wrapper.

The state space is broken into prefixed sections called buckets. Each bucket
contains only one type of model, stored under its primary key:

	<bucket name>:<key>

Models are serialized with the shared codec. A bucket can be registered with
a query router, so that its content is available to clients through the ABCI
query endpoint under /<bucket name>.
*/
package orm
