/*
Package app contains the framework assembling extensions into a ledger
application: a router dispatching messages to handlers, decorator chains,
the JSON transaction envelope and an Application that applies blocks of
transactions to a committed store.
*/
package app
