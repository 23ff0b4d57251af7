package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ecmalite/internal/bytecode"
	"ecmalite/internal/runtime"
)

type args struct {
	scriptPath    *string
	traceGC       *bool
	printBytecode *bool
	maxWorkers    *int64
}

func readArgs() *args {
	a := &args{
		scriptPath:    flag.String("script", "", "Path to a compiled .ecb bytecode module"),
		traceGC:       flag.Bool("trace-gc", false, "Log each minor/major collection to stderr"),
		printBytecode: flag.Bool("print-bytecode", false, "Print the loaded module's disassembly instead of running it"),
		maxWorkers:    flag.Int64("max-workers", 4, "Event loop background worker pool size"),
	}
	flag.Parse()
	return a
}

func main() {
	a := readArgs()

	if *a.scriptPath == "" {
		log.Fatal("Script not informed")
	}

	f, err := os.Open(*a.scriptPath)
	if err != nil {
		log.Fatalf("Can't open script file: %s", err.Error())
	}
	defer f.Close()

	mod, err := bytecode.DecodeModule(f)
	if err != nil {
		log.Fatalf("Can't decode module: %s", err.Error())
	}

	if *a.printBytecode {
		printModule(mod)
		return
	}

	engine := runtime.New(runtime.Options{
		MaxWorkers: *a.maxWorkers,
		TraceGC:    *a.traceGC,
	})

	entry, err := engine.Load(mod)
	if err != nil {
		log.Fatalf("Can't load module: %s", err.Error())
	}

	if err := engine.Run(entry); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func printModule(mod *bytecode.Module) {
	for i, fn := range mod.Functions {
		marker := "  "
		if i == mod.Entry {
			marker = "->"
		}
		fmt.Printf("%s function#%d (%d args, %d locals)\n", marker, i, fn.NumArgs, fn.NumLocals)
		for pc, ins := range fn.Code {
			fmt.Printf("    %4d  %-24v a=%d b=%d\n", pc, ins.Op, ins.A, ins.B)
		}
	}
}
