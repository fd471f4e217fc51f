// Package registry maps the runner type named in a flow file's task block
// to the compiled Go handler that executes it.
//
// Modules register their runners at startup. The registry is then validated
// once, so that a handler whose input struct cannot be decoded from HCL is
// reported before any task runs.
package registry
