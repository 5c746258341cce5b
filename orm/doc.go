/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* Models are addressed by their primary key only. Secondary lookups are
explicit models stored in their own bucket.
* Models are serialized with go-amino, no code generation is required.

Monotonic counters are provided by Sequence.
*/
package orm
