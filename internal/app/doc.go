// Package app contains the core application logic. It wires configuration,
// the runner registry, flow loading and the scheduler into a single run
// lifecycle, decoupled from any specific entrypoint like a CLI.
package app
