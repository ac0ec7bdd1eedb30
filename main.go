package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jyjdal/rv64-emu/config"
	"github.com/jyjdal/rv64-emu/debugger"
	"github.com/jyjdal/rv64-emu/loader"
	"github.com/jyjdal/rv64-emu/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		maxCycles   = flag.Uint64("max-cycles", vm.DefaultMaxCycles, "Maximum CPU cycles before halt")
		dramSize    = flag.Uint64("dram-size", vm.DRAMSize, "DRAM size in bytes")
		verboseMode = flag.Bool("verbose", false, "Verbose output")

		enableTrace    = flag.Bool("trace", false, "Enable execution trace")
		traceFile      = flag.String("trace-file", "", "Trace output file (default: trace.log in log dir)")
		traceFilter    = flag.String("trace-filter", "", "Filter trace by ABI register names (comma-separated, e.g., a0,a1,sp)")
		enableMemTrace = flag.Bool("mem-trace", false, "Enable memory access trace")
		memTraceFile   = flag.String("mem-trace-file", "", "Memory trace output file (default: memtrace.log)")
		enableStats    = flag.Bool("stats", false, "Enable performance statistics")
		statsFile      = flag.String("stats-file", "", "Statistics output file (default: stats.json)")
		statsFormat    = flag.String("stats-format", "json", "Statistics format (json, csv)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("rv64-emu %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	imagePath := flag.Arg(0)
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: file not found: %s\n", imagePath)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Loading program image: %s\n", imagePath)
	}

	machine := vm.NewVM(*dramSize, nil)
	machine.MaxCycles = *maxCycles

	if err := loader.LoadFile(machine, imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Entry point: 0x%016X\n", machine.CPU.PC)
		fmt.Printf("DRAM: 0x%016X - 0x%016X (%d bytes)\n",
			vm.DRAMBase, vm.DRAMBase+*dramSize, *dramSize)
	}

	if *enableTrace {
		tracePath := *traceFile
		if tracePath == "" {
			tracePath = filepath.Join(config.GetLogPath(), "trace.log")
		}

		traceWriter, err := os.Create(tracePath) // #nosec G304 -- user-specified trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := traceWriter.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close trace file: %v\n", cerr)
			}
		}()

		machine.ExecutionTrace = vm.NewExecutionTrace(traceWriter)
		machine.ExecutionTrace.Start()

		if *traceFilter != "" {
			regs := strings.Split(*traceFilter, ",")
			machine.ExecutionTrace.SetFilterRegisters(regs)
		}

		if *verboseMode {
			fmt.Printf("Execution trace enabled: %s\n", tracePath)
		}
	}

	if *enableMemTrace {
		memTracePath := *memTraceFile
		if memTracePath == "" {
			memTracePath = filepath.Join(config.GetLogPath(), "memtrace.log")
		}

		memTraceWriter, err := os.Create(memTracePath) // #nosec G304 -- user-specified memory trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory trace file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := memTraceWriter.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close memory trace file: %v\n", cerr)
			}
		}()

		machine.MemoryTrace = vm.NewMemoryTrace(memTraceWriter)
		machine.MemoryTrace.Start()

		if *verboseMode {
			fmt.Printf("Memory trace enabled: %s\n", memTracePath)
		}
	}

	if *enableStats {
		machine.Statistics = vm.NewPerformanceStatistics()
		machine.Statistics.Start()

		if *verboseMode {
			fmt.Println("Performance statistics enabled")
		}
	}

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(machine)

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("RV64I Debugger - Type 'help' for commands")
			fmt.Printf("Program loaded: %s\n", imagePath)
			fmt.Println()

			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	if *verboseMode {
		fmt.Println("\nStarting execution...")
		fmt.Println("----------------------------------------")
	}

	runErr := machine.Run()

	fmt.Println(machine.DumpState())

	if runErr != nil {
		if execErr, ok := runErr.(*vm.ExecutionError); ok &&
			(execErr.Kind == vm.EnvCall || execErr.Kind == vm.Breakpoint || execErr.Kind == vm.PCOutOfRange) {
			// Clean termination: ECALL, EBREAK, or PC ran off the end of DRAM.
		} else {
			fmt.Fprintf(os.Stderr, "\nRuntime error at PC=0x%016X: %v\n", machine.CPU.PC, runErr)
			os.Exit(1)
		}
	}

	if *verboseMode {
		fmt.Println("\n----------------------------------------")
		fmt.Println("Execution complete")
		fmt.Printf("Exit code: %d\n", machine.ExitCode)
		fmt.Printf("CPU cycles: %d\n", machine.CPU.Cycles)
		fmt.Printf("Instructions executed: %d\n", len(machine.InstructionLog))
	}

	if machine.ExecutionTrace != nil {
		if err := machine.ExecutionTrace.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing execution trace: %v\n", err)
		} else if *verboseMode {
			fmt.Printf("Execution trace written (%d entries)\n", len(machine.ExecutionTrace.GetEntries()))
		}
	}

	if machine.MemoryTrace != nil {
		if err := machine.MemoryTrace.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing memory trace: %v\n", err)
		} else if *verboseMode {
			fmt.Printf("Memory trace written (%d entries)\n", len(machine.MemoryTrace.GetEntries()))
		}
	}

	if machine.Statistics != nil {
		statPath := *statsFile
		if statPath == "" {
			ext := "json"
			if *statsFormat == "csv" {
				ext = "csv"
			}
			statPath = filepath.Join(config.GetLogPath(), "stats."+ext)
		}

		statsWriter, err := os.Create(statPath) // #nosec G304 -- user-specified stats output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating statistics file: %v\n", err)
		} else {
			defer func() {
				if cerr := statsWriter.Close(); cerr != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close statistics file: %v\n", cerr)
				}
			}()

			var exportErr error
			switch *statsFormat {
			case "csv":
				exportErr = machine.Statistics.ExportCSV(statsWriter)
			default:
				exportErr = machine.Statistics.ExportJSON(statsWriter)
			}

			if exportErr != nil {
				fmt.Fprintf(os.Stderr, "Error exporting statistics: %v\n", exportErr)
			} else if *verboseMode {
				fmt.Printf("Statistics exported: %s\n", statPath)
			}
		}

		if *verboseMode {
			fmt.Println()
			fmt.Println(machine.Statistics.String())
		}
	}

	os.Exit(int(machine.ExitCode))
}

func printHelp() {
	fmt.Printf(`rv64-emu %s

Usage: rv64-emu [options] <program-image>

Options:
  -help              Show this help message
  -version           Show version information
  -debug             Start in debugger mode (CLI)
  -tui               Start in TUI debugger mode
  -max-cycles N      Set maximum CPU cycles (default: %d)
  -dram-size N       Set DRAM size in bytes (default: %d)
  -verbose           Enable verbose output

Tracing & Performance Options:
  -trace             Enable execution trace
  -trace-file FILE   Trace output file (default: trace.log in log dir)
  -trace-filter REGS Filter trace by ABI register names (e.g., a0,a1,sp)
  -mem-trace         Enable memory access trace
  -mem-trace-file F  Memory trace file (default: memtrace.log)
  -stats             Enable performance statistics
  -stats-file FILE   Statistics output file (default: stats.json)
  -stats-format FMT  Statistics format: json, csv (default: json)

Examples:
  # Run a raw RV64I program image directly
  rv64-emu program.bin

  # Run with the command-line debugger
  rv64-emu -debug program.bin

  # Run with the TUI debugger
  rv64-emu -tui program.bin

  # Run with execution trace filtered to a few registers
  rv64-emu -trace -trace-filter "a0,a1,sp" program.bin

Debugger Commands (when in -debug mode):
  run, r             Start program execution
  continue, c        Continue execution
  step, s            Execute single instruction
  next, n            Step over JAL/JALR calls
  break ADDR         Set breakpoint at address
  info registers     Show all registers
  print REG          Print a register's value
  help               Show debugger help
`, Version, vm.DefaultMaxCycles, vm.DRAMSize)
}
