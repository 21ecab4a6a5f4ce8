// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/vnpu/config"
	"github.com/ezrec/vnpu/emulator"
)

func main() {
	var configFile string
	var input string
	var prompt bool
	var delay time.Duration
	var verbose bool

	flag.StringVar(&configFile, "config", "", ".star configuration file to use")
	flag.StringVar(&input, "i", "-", "Instruction input")
	flag.BoolVar(&prompt, "p", false, "Always print the '> ' prompt")
	flag.DurationVar(&delay, "delay", 0, "Pause before each instruction")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	cfg := &config.Config{}

	if len(configFile) != 0 {
		err := cfg.Load(configFile, nil)
		if err != nil {
			log.Fatalf("%v: %v", configFile, err)
		}
	}

	// Command line flags override the configuration file.
	var promptSet bool
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "v":
			cfg.Verbose = verbose
			cfg.VerboseSet = true
		case "p":
			cfg.Prompt = prompt
			promptSet = true
		case "delay":
			cfg.Delay = delay
		}
	})

	var inf *os.File
	if input == "-" {
		inf = os.Stdin
		if !promptSet && term.IsTerminal(int(inf.Fd())) {
			cfg.Prompt = true
		}
	} else {
		var err error
		inf, err = os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	emu := emulator.NewEmulator(inf, os.Stdout)
	defer emu.Close()

	emu.Verbose = cfg.Verbose
	emu.Prompt = cfg.Prompt
	emu.Delay = cfg.Delay
	emu.Boot = cfg.Boot
	emu.Interrupt = interrupt

	emu.Reset()

	err := emu.Start(ctx, !cfg.VerboseSet)
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	if emu.Halted {
		return
	}

	err = emu.Run(ctx)
	var runtime *emulator.ErrRuntime
	if err != nil && !errors.As(err, &runtime) && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
