/*
Package arabica defines the interfaces used throughout the application:
storage, transactions, handlers, decorators and the request context.

Extensions live under x/ and are glued together by the app package. Each
extension declares its messages, models and handlers, and talks to other
extensions only through small controller interfaces, so that every cross
module call happens synchronously inside the cache-wrapped store of a single
transaction.
*/
package arabica
