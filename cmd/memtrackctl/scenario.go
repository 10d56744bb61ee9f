// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/kjhaus/memtrack/diag"
	"github.com/kjhaus/memtrack/layer"
	"github.com/kjhaus/memtrack/registry"
	"github.com/kjhaus/memtrack/sim"
	"github.com/kjhaus/memtrack/track"
)

// scenario is one of spec.md §8's end-to-end scenarios: a literal
// sequence of calls against a freshly built Layer, with a human label.
type scenario struct {
	name string
	desc string
	run  func(l *layer.Layer, d *sim.Driver)
}

var scenarios = []scenario{
	{
		name: "leak-at-teardown",
		desc: "alloc(size=1024) -> M; destroyDevice(). Expect MEMORY_LEAK.",
		run: func(l *layer.Layer, d *sim.Driver) {
			l.AllocateMemory(track.AllocDesc{Size: 1024})
			l.Tracker().DestroyDevice()
		},
	},
	{
		name: "double-free",
		desc: "alloc -> M; free(M); free(M). Expect the second free to emit INVALID_MEM_OBJ.",
		run: func(l *layer.Layer, d *sim.Driver) {
			m, _ := l.AllocateMemory(track.AllocDesc{Size: 256})
			l.FreeMemory(m)
			l.FreeMemory(m)
		},
	},
	{
		name: "free-with-live-binding",
		desc: "alloc -> M; createBuffer -> B; bind(B, M); free(M). Expect FREED_MEM_REF.",
		run: func(l *layer.Layer, d *sim.Driver) {
			m, _ := l.AllocateMemory(track.AllocDesc{Size: 256})
			b, _ := l.CreateBuffer(track.BufferDesc{Size: 256})
			l.BindBufferMemory(b, m)
			l.FreeMemory(m)
		},
	},
	{
		name: "rebind",
		desc: "alloc -> M1, M2; createImage -> I; bind(I, M1); bind(I, M2). Expect REBIND_OBJECT.",
		run: func(l *layer.Layer, d *sim.Driver) {
			m1, _ := l.AllocateMemory(track.AllocDesc{Size: 256})
			m2, _ := l.AllocateMemory(track.AllocDesc{Size: 256})
			i, _ := l.CreateImage(track.ImageDesc{Width: 64, Height: 64})
			l.BindImageMemory(i, m1)
			l.BindImageMemory(i, m2)
		},
	},
	{
		name: "signalled-fence-submitted",
		desc: "createFence(SIGNALLED) -> F; queueSubmit(q, [cb], F). Expect INVALID_FENCE_STATE.",
		run: func(l *layer.Layer, d *sim.Driver) {
			q, _ := l.CreateQueue()
			cb, _ := l.CreateCommandBuffer()
			f, _ := l.CreateFence(true)
			l.QueueSubmit(q, []registry.Handle{cb}, f)
		},
	},
	{
		name: "reset-while-in-flight",
		desc: "submit cb referencing a bound buffer, then begin it again without waiting. Expect RESET_CB_WHILE_IN_FLIGHT.",
		run: func(l *layer.Layer, d *sim.Driver) {
			m, _ := l.AllocateMemory(track.AllocDesc{Size: 256})
			b, _ := l.CreateBuffer(track.BufferDesc{Size: 256})
			l.BindBufferMemory(b, m)
			q, _ := l.CreateQueue()
			cb, _ := l.CreateCommandBuffer()
			l.CmdReferenceObject(cb, b)
			f, _ := l.CreateFence(false)
			l.QueueSubmit(q, []registry.Handle{cb}, f)
			l.BeginCommandBuffer(cb)
		},
	},
}

func scenarioCommand(snk **diag.Sink) *cli.Command {
	return &cli.Command{
		Name:  "scenario",
		Usage: "run one of the literal end-to-end scenarios from spec §8",
		Subcommands: func() []*cli.Command {
			cmds := make([]*cli.Command, 0, len(scenarios)+1)
			for _, sc := range scenarios {
				sc := sc
				cmds = append(cmds, &cli.Command{
					Name:  sc.name,
					Usage: sc.desc,
					Action: func(c *cli.Context) error {
						return runScenario(*snk, sc)
					},
				})
			}
			cmds = append(cmds, &cli.Command{
				Name:  "all",
				Usage: "run every scenario in sequence",
				Action: func(c *cli.Context) error {
					for _, sc := range scenarios {
						if err := runScenario(*snk, sc); err != nil {
							return err
						}
					}
					return nil
				},
			})
			return cmds
		}(),
	}
}

func runScenario(snk *diag.Sink, sc scenario) error {
	fmt.Printf("=== scenario: %s ===\n%s\n", sc.name, sc.desc)
	d := sim.New()
	tr := track.New(snk)
	l := layer.New(tr, d)
	sc.run(l, d)
	fmt.Printf("live memory objects: %d\n", tr.LiveMemoryCount())
	fmt.Printf("live objects: %d\n", tr.LiveObjectCount())
	fmt.Printf("in-flight command buffers: %d\n\n", tr.InFlightCommandBufferCount())
	return nil
}
