/*
Package token implements fractional ownership vaults.

A vault splits a single asset into a fixed supply of fungible fractions that
are minted to the vault owner at creation. Fractions can be transferred
between holders until the owner redeems the vault, which is a terminal
state.

Other extensions read holder balances, supply and the redeemed flag to
distribute revenue and to weight governance votes.
*/
package token
