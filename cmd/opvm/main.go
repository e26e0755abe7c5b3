// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/k0kubun/pp/v3"

	"github.com/ezrec/opvm/cpu"
	"github.com/ezrec/opvm/emulator"
	"github.com/ezrec/opvm/trace"
)

func main() {
	var input string
	var output string
	var traceFile string
	var show string
	var dump bool
	var verbose bool

	config := cpu.DefaultConfig()
	var steps int

	flag.StringVar(&input, "i", "-", "IN source")
	flag.StringVar(&output, "o", "-", "OUT sink")
	flag.IntVar(&config.Registers, "regs", cpu.NR_REGS, "Register count, the last register is the pc")
	flag.IntVar(&config.CodeSize, "imem", cpu.IADDR_SIZE, "Instruction memory size")
	flag.IntVar(&config.DataSize, "dmem", cpu.DADDR_SIZE, "Data memory size")
	flag.BoolVar(&config.FallThrough, "fallthrough", false, "Advance past a conditional branch that is not taken")
	flag.IntVar(&steps, "steps", 0, "Stop after this many instructions (0 is unlimited)")
	flag.StringVar(&traceFile, "trace", "", "Parquet execution trace to write")
	flag.StringVar(&show, "show", "", "Parquet execution trace to print, then exit")
	flag.BoolVar(&dump, "dump", false, "Dump the loaded program to stderr")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] PROGRAM\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	log.SetPrefix("opvm: ")
	log.SetFlags(0)

	if len(show) != 0 {
		df, err := trace.Load(show)
		if err != nil {
			log.Fatalf("%v: %v", show, err)
		}
		fmt.Print(df.Table())
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	config.PcRegister = config.Registers - 1

	emu, err := emulator.NewEmulator(config)
	if err != nil {
		log.Fatal(err)
	}

	emu.Verbose = verbose
	emu.MaxSteps = steps

	program := flag.Arg(0)
	inf, err := os.Open(program)
	if err != nil {
		log.Fatalf("%v: %v", program, err)
	}

	err = emu.Parse(inf)
	inf.Close()
	if err != nil {
		log.Fatalf("%v: %v", program, err)
	}

	if dump {
		pp.Fprintln(os.Stderr, emu.Program.Records)
	}

	if input == "-" {
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	if len(traceFile) != 0 {
		tw, err := trace.Create(traceFile)
		if err != nil {
			log.Fatalf("%v: %v", traceFile, err)
		}
		emu.Tracer = tw
	}

	err = emu.Reset()
	if err == nil {
		err = emu.Run()
	}

	// The trace is flushed even when the run fails.
	close_err := emu.Close()
	if err != nil {
		log.Fatalf("%v: %v", program, err)
	}
	if close_err != nil {
		log.Fatalf("%v: %v", traceFile, close_err)
	}

	if verbose {
		log.Printf("%v", emu.Cpu.String())
	}
}
