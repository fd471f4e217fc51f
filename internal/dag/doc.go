// Package dag turns a loaded flow into an executable graph.
//
// Each task becomes one node whose work unit decodes the task's arguments
// into its runner's input struct and calls the runner. Arguments are
// decoded and validated while the graph is built, so a misconfigured task
// fails the build instead of failing midway through a run.
package dag
