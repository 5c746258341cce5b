/*
Package shares implements a basis point share table.

A table distributes a whole, 10,000 basis points, between a set of
beneficiaries. Beneficiaries are never removed from a table, they can only be
deactivated, so that amounts paid in the past remain attributable.
The sum of active shares equals the whole after every successful operation.
*/
package shares
