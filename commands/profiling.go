package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"runtime"
	"runtime/pprof"
)

// startProfiling starts the cpu profile and returns the function writing both profiles
func startProfiling(dir string) func() {
	stopCPU := func() {}
	if cpuprofile != "" {
		cpuProfPath := path.Join(dir, cpuprofile)
		fmt.Println("Profiling CPU to ", cpuProfPath)
		f, err := os.Create(cpuProfPath)
		if err != nil {
			slog.Error("could not create CPU profile", "error", err)
		} else if err := pprof.StartCPUProfile(f); err != nil {
			slog.Error("could not start CPU profile", "error", err)
			f.Close()
		} else {
			stopCPU = func() {
				pprof.StopCPUProfile()
				f.Close()
			}
		}
	}

	return func() {
		stopCPU()
		if memprofile == "" {
			return
		}
		memProfPath := path.Join(dir, memprofile)
		fmt.Println("Profiling Memory to ", memProfPath)
		f, err := os.Create(memProfPath)
		if err != nil {
			slog.Error("could not create memory profile", "error", err)
			return
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			slog.Error("could not write memory profile", "error", err)
		}
	}
}
