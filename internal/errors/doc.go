// Package errors holds the sentinels and exit codes shared by the rx CLI.
//
// Commands return an [ExitError] to choose the process status and to attach
// a hint printed under the message:
//
//	return rxerrors.NewUserError(err, "Run: rx lint "+path)
//
// main turns the result into a status with [Code]. Failed validation exits
// with [ExitInvalid] so scripts can tell bad data apart from bad usage.
package errors
