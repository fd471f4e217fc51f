package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vk/taskflow/internal/graph"
	"github.com/vk/taskflow/internal/node"
	"github.com/vk/taskflow/modules/print"
)

// DemoDelay is how long each demo task works before printing.
const DemoDelay = 100 * time.Millisecond

// Demo builds the four-node diamond A -> {B, C} -> D. Each task sleeps for
// delay and then prints its name to w.
func Demo(w io.Writer, delay time.Duration) *graph.Graph {
	out := print.New(w)
	task := func(name string) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return ctx.Err()
			}
			return out.Println(name)
		}
	}

	g := graph.New()
	ids := make(map[string]node.ID, 4)
	for _, name := range []string{"A", "B", "C", "D"} {
		ids[name] = g.AddNode(name, task(name))
	}
	for _, e := range [][2]string{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}} {
		// The handles come from this graph, so linking cannot fail.
		if err := g.Precede(ids[e[0]], ids[e[1]]); err != nil {
			panic(fmt.Sprintf("demo: linking %s -> %s: %v", e[0], e[1], err))
		}
	}
	return g
}
