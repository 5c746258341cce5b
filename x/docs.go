/*
Package x contains some standard extensions

Extensions share the authorization helpers declared here: an
Authenticator reveals who signed the current transaction, a RoleChecker
answers whether that signer was granted a privileged role and a Guard
protects value transferring operations against re-entrant calls.
*/
package x
