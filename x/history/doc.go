/*
Package history is an append only log of distribution records.

Every payment made by the royalty engine is recorded with the block time and
height it happened at. Records are numbered from zero in the order they were
appended, and an additional index lists the record numbers of every
beneficiary. Records are never modified nor deleted.
*/
package history
