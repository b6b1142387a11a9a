// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/alecthomas/kong"

	"github.com/antgroup/zeta-ort/modules/env"
	"github.com/antgroup/zeta-ort/pkg/command"
	"github.com/antgroup/zeta-ort/pkg/tr"
	"github.com/antgroup/zeta-ort/pkg/version"
	"github.com/antgroup/zeta-ort/pkg/zeta"
)

type App struct {
	command.Globals
	MergeTree  command.MergeTree  `cmd:"merge-tree" help:"Perform a three-way tree merge without touching the working tree"`
	MergeBase  command.MergeBase  `cmd:"merge-base" help:"Find the best common ancestors for a merge"`
	MergeFile  command.MergeFile  `cmd:"merge-file" help:"Run a three-way file-level merge"`
	ForEachRef command.ForEachRef `cmd:"for-each-ref" help:"Output information on each ref"`
	Config     command.Config     `cmd:"config" help:"Get and set repository or global options"`
	Version    command.Version    `cmd:"version" help:"Display version information"`
	Debug      bool               `name:"debug" help:"Enable debug mode; analyze timing"`
}

type Tracer struct {
	closeFn func()
}

func NewTracer(debugMode bool) *Tracer {
	d := &Tracer{}
	if !debugMode {
		return d
	}
	pprofName := filepath.Join(os.TempDir(), fmt.Sprintf("zeta-%d.pprof", os.Getpid()))
	fd, err := os.Create(pprofName)
	if err != nil {
		return d
	}
	if err = pprof.StartCPUProfile(fd); err != nil {
		_ = fd.Close()
		return d
	}
	d.closeFn = func() {
		pprof.StopCPUProfile()
		_ = fd.Close()
		fmt.Fprintf(os.Stderr, "Task operation completed\ngo tool pprof -http=\":8080\" %s\n", pprofName)
	}
	return d
}

func (d *Tracer) Close() {
	if d.closeFn != nil {
		d.closeFn()
	}
}

func main() {
	_ = env.DelayInitializeEnv()
	// initialize locale
	_ = tr.Initialize()
	var app App
	parser := kong.Must(&app,
		kong.Name("zeta-ort"),
		kong.Description(tr.W("zeta-ort - a standalone ort tree-merge engine")),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": version.GetVersionString(),
		},
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	now := time.Now()
	t := NewTracer(app.Debug)
	err = ctx.Run(&app.Globals)
	t.Close()
	if app.Verbose {
		app.DbgPrint("time spent: %v", time.Since(now))
	}
	if err == nil {
		return
	}
	if e, ok := err.(*zeta.ErrExitCode); ok {
		os.Exit(e.ExitCode)
	}
	os.Exit(127)
}
