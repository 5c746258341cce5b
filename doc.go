/*
Package ledger defines all common interfaces to tie together the value
accounting extensions (royalty pools, distribution history, fractional revenue
and governance), as well as implementations of some of the simpler
components (when interfaces would be too much overhead).

Every public operation is an atomic state transition executed against a
KVStore. Handlers receive the store together with a context.Context that
carries block information. There exist two functions for every value of type
T that is supported in the Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ panics if the value was previously set, to avoid lower-level modules
overwriting the value (eg. height or block time).

Money is represented by Amount, an arbitrary precision unsigned integer. All
share computations use integer floor division with a fixed basis point
denominator, never floating point.
*/
package ledger
