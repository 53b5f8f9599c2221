// Package profile provides optional runtime profiling for rnmake.
//
// Profiling is compiled in only with the "pprof" build tag, through
// [github.com/pkg/profile]. Without the tag, [Profiler.Start] returns a no-op
// and [Modes] reports nothing.
//
//	go build -tags pprof .
//	rnmake --pprof-mode cpu --pprof-dir ./prof render index.html.tpl
//	go tool pprof -http=: ./prof/cpu.pprof
//
// Profile files are named after the mode (cpu.pprof, mem.pprof, ...). The
// default directory is the pprof subdirectory of the user cache directory.
//
// The tagged build also imports [net/http/pprof], so a program embedding this
// package and serving [net/http.DefaultServeMux] exposes /debug/pprof/.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
