package app

import (
	"io"
	"time"

	"github.com/vk/taskflow/internal/registry"
	"github.com/vk/taskflow/modules/fail"
	"github.com/vk/taskflow/modules/http_request"
	"github.com/vk/taskflow/modules/print"
	"github.com/vk/taskflow/modules/s3"
	"github.com/vk/taskflow/modules/sleep"
	"github.com/vk/taskflow/modules/socketio"
)

// httpTimeout bounds a single http_request task that sets no timeout.
const httpTimeout = 30 * time.Second

// coreModules is the definitive list of runners compiled into the taskflow
// binary. print writes to outW.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		print.New(outW),
		&sleep.Module{},
		http_request.New(httpTimeout),
		&socketio.Module{},
		&s3.Module{},
		&fail.Module{},
	}
}
