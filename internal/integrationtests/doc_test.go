// Package integrationtests drives whole flows through the application:
// HCL files on disk, the runner registry, graph building and the scheduler.
package integrationtests
