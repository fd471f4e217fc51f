// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// layers CLI flags over the loaded configuration and hands the result to
// the app package.
package cli
