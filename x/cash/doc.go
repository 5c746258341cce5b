/*
Package cash defines a simple implementation of moving value between
accounts.

There is no logic in the coins, except that the balance of any account may
not go below zero. Thus, this implementation is referred to as cash. Simple
and safe.

Module accounts, like the royalty escrow, are ordinary accounts with an
address derived from a condition. Only the owning extension can move value
out of them.
*/
package cash
