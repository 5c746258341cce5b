/*
Package revenue distributes revenue of a fractionalized vault between its
holders.

Revenue added to a vault is kept in the escrow account of that vault. Each
holder can claim a part of all revenue ever added that is proportional to
its current balance, minus what it has claimed already:

	claimable = floor(totalRevenue * balance / totalSupply) - claimed

Claimable amounts are computed against the current balance, not against
the balance held when revenue was added. Fractions transferred after revenue
accrued move the entitlement to that revenue with them.
*/
package revenue
