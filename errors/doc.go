/*
Package errors implements custom error interfaces for the ledger.

The idea is to reuse as many errors from this package as possible and define
custom package errors only when absolutely necessary. Every root error carries
a unique code, so that clients can distinguish failures (for example
ErrNothingToWithdraw from ErrTransferFailed) without parsing messages.

If you want to register a custom error - use Register(code, description).
For reusing errors - use Errxxx.New and Errxxx.Newf, or Wrap an existing
error with additional context.

Stack traces are attached once, at the innermost Wrap. Once you have an
error, you can use fmt to get more context:
	%s is just the error message
	%+v is the message followed by the stack trace of the creation point

Use Code to extract the registered code of any error. Errors that do not wrap
a registered root error are internal and reported with code 1.
*/
package errors
