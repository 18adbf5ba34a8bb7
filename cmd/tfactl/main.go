package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/edaniels/golog"
	"go.uber.org/zap"

	"github.com/gen2brain/tfa"
)

type command struct {
	name  string
	args  string
	nargs int
	help  string
	run   func(e *env, args []string) error
}

type env struct {
	config *tfa.Config
	logger golog.Logger
	dev    *tfa.Device
}

var commands = []command{
	{"startup", "", 0, "Run the amplifier bring-up and upload the configured patch tables", runStartup},
	{"get", "<reg>", 1, "Read a register", runGet},
	{"set", "<reg> <value>", 2, "Write a register", runSet},
	{"getbf", "<bitfield>", 1, "Read a named bitfield", runGetBitfield},
	{"setbf", "<bitfield> <value>", 2, "Write a named bitfield", runSetBitfield},
	{"dump", "", 0, "Read and decode every register holding a known bitfield", runDump},
	{"poweron", "", 0, "Power the amplifier on and off again, reporting clock lock", runPowerCycle},
	{"play", "<wav-file>", 1, "Power on and play a 16/24/32-bit PCM WAV file through the amplifier", runPlay},
	{"cards", "", 0, "List sound cards and check the amplifier PCM device", nil},
}

func main() {
	var (
		configPath string
		verbose    bool
		trace      bool
	)

	flag.StringVar(&configPath, "config", "", "YAML configuration file (default: built-in msm8996 settings)")
	flag.BoolVar(&verbose, "v", false, "Enable debug logging")
	flag.BoolVar(&trace, "trace", false, "Log every register access and patch write (implies -v)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [args]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nOptions:")
		for _, name := range []string{"config", "v", "trace"} {
			f := flag.Lookup(name)
			if f != nil {
				fmt.Fprintf(os.Stderr, "  --%s\n    \t%v (default %q)\n", f.Name, f.Usage, f.DefValue)
			}
		}

		fmt.Fprintln(os.Stderr, "\nCommands:")
		for _, c := range commands {
			fmt.Fprintf(os.Stderr, "  %-8s %-20s %s\n", c.name, c.args, c.help)
		}

		fmt.Fprintln(os.Stderr, "\nRegisters and values accept decimal, 0x hex and 0b binary.")
	}

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cmd, ok := lookupCommand(flag.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}

	args := flag.Args()[1:]
	if len(args) != cmd.nargs {
		fmt.Fprintf(os.Stderr, "Usage: %s %s %s\n", os.Args[0], cmd.name, cmd.args)
		os.Exit(1)
	}

	logger, err := newLogger(verbose || trace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	config := tfa.DefaultConfig()
	if configPath != "" {
		config, err = tfa.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	e := &env{config: config, logger: logger}

	if cmd.name == "cards" {
		if err := runCards(e); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		return
	}

	opts := []tfa.Option{tfa.WithLogger(logger.Named("tfa"))}
	if trace {
		opts = append(opts, tfa.WithTracer(tfa.NewLogTracer(logger.Named("trace"))))
	}

	e.dev, err = tfa.Open(config, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening amplifier: %v\n", err)
		os.Exit(1)
	}

	err = cmd.run(e, args)
	_ = e.dev.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == strings.ToLower(name) {
			return c, true
		}
	}

	return command{}, false
}

// newLogger builds the golog development logger on stderr, at debug level when verbose.
func newLogger(verbose bool) (golog.Logger, error) {
	cfg := golog.NewDevelopmentLoggerConfig()
	cfg.OutputPaths = []string{"stderr"}

	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar().Named("tfactl"), nil
}
