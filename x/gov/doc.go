/*
Package gov implements token weighted governance proposals of a vault.

Any holder of vault fractions can open a proposal. Holders vote with their
current balance while the voting period is open. A proposal passes when the
votes cast reach the quorum, a fraction of the total supply configured in
basis points, and strictly more weight voted for than against. A passed
proposal can be executed once its voting period is over. Execution only
marks the proposal as executed, other extensions act upon that flag.

Proposal states are computed from the stored counters and the current block
height, there is no background scheduling.
*/
package gov
