package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/edaniels/golog"
	"gopkg.in/yaml.v3"

	"github.com/gen2brain/tfa/vendorinit"
)

func main() {
	logger := golog.NewDevelopmentLogger("vendorinit")
	defer func() { _ = logger.Sync() }()

	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, logger golog.Logger) error {
	var (
		configPath string
		target     string
		sim        vendorinit.SIMMode
		dryRun     bool
		platform   string
		getprop    string
		setprop    string
	)

	defaults := vendorinit.DefaultConfig()

	fs := flag.NewFlagSet("vendorinit", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "YAML file with target and sim keys; flags given on the command line override it")
	fs.StringVar(&target, "target", defaults.Target, "The board platform the properties apply to")
	fs.TextVar(&sim, "sim", defaults.SIM, "SIM configuration: auto, dual or single")
	fs.BoolVar(&dryRun, "dry-run", false, "Apply to an in-memory property store and print the result")
	fs.StringVar(&platform, "platform", vendorinit.DefaultTarget, "Value of ro.board.platform in dry-run mode")
	fs.StringVar(&getprop, "getprop", "getprop", "Path of the getprop tool")
	fs.StringVar(&setprop, "setprop", "setprop", "Path of the setprop tool")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [options]\n", fs.Name())
		fmt.Fprintln(out, "\nOptions:")
		for _, name := range []string{"config", "target", "sim", "dry-run", "platform", "getprop", "setprop"} {
			f := fs.Lookup(name)
			if f != nil {
				fmt.Fprintf(out, "  --%s\n    \t%v (default %q)\n", f.Name, f.Usage, f.DefValue)
			}
		}
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := defaults
	if configPath != "" {
		if err := loadConfig(configPath, &cfg); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Flags given on the command line win over the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "target":
			cfg.Target = target
		case "sim":
			cfg.SIM = sim
		}
	})

	var props vendorinit.Properties = &vendorinit.AndroidProperties{Getprop: getprop, Setprop: setprop}

	var store *vendorinit.MapProperties
	if dryRun {
		store = vendorinit.NewMapProperties(map[string]string{vendorinit.PlatformProperty: platform})
		props = store
	}

	if err := vendorinit.Init(props, cfg, logger); err != nil {
		return err
	}

	if store != nil {
		printProperties(stdout, store.Snapshot())
	}

	return nil
}

func printProperties(w io.Writer, props map[string]string) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "[%s]: [%s]\n", k, props[k])
	}
}

func loadConfig(path string, cfg *vendorinit.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}
