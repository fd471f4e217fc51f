// Package flowfile loads task-graph definitions written in HCL.
//
// A flow is a set of task blocks, each naming the runner that implements it:
//
//	task "sleep" "A" {
//	  arguments {
//	    duration = "100ms"
//	  }
//	}
//
//	task "print" "B" {
//	  depends_on = ["A"]
//	  timeout    = "2s"
//	  arguments {
//	    message = "hello ${env.USER}"
//	  }
//	}
//
// Expressions are evaluated against a context exposing the process
// environment as env. Argument bodies are kept undecoded; the runner that
// owns a task decodes them into its own input type.
package flowfile
