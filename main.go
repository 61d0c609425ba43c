package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"progdemo/pkg/cli"
	"progdemo/pkg/config"
	"progdemo/pkg/display"
	"progdemo/pkg/menu"
	"progdemo/pkg/settings"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res, err := ProgDemo(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(res.ExitCode)
}

func ProgDemo(ctx context.Context, args []string) (*cli.ExecutionResult, error) {
	// 1. Parse cli.def
	cliEngine, err := cli.MakeEngine()
	if err != nil {
		return nil, fmt.Errorf("INTERNAL ERROR:  parsing CLI definition: %w", err)
	}

	// 2. Parse command line arguments
	pr := cliEngine.Parse(args)

	// 3. Initialize console and logging
	disp := display.NewConsole()
	defer disp.Close()

	level := new(slog.LevelVar)
	if pr.Invocation.GlobalBool("verbose") {
		disp.SetVerbose(true)
		level.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(display.NewLogHandler(disp, level)))

	// 4. Report command line errors or print help
	if pr.Error != nil {
		return nil, pr.Error
	}
	if pr.Help {
		if pr.Unknown != "" {
			t := cliEngine.Theme
			fmt.Fprintf(cliEngine.Out, "%s %s\n", t.Paint(t.Notice, "Unknown command:"), pr.Unknown)
		}
		cliEngine.PrintHelp(pr.HelpArgs...)
		return &cli.ExecutionResult{ExitCode: 0}, nil
	}

	// 5. Resolve configuration
	sysCfg := config.Init()
	store := settings.Open(sysCfg.GetSettingsFile())
	values, err := store.Get()
	if err != nil {
		return nil, fmt.Errorf("error reading settings: %w", err)
	}
	w := sysCfg.Checkout()
	w.SetStorageDir(config.ResolveStorageDir(pr.Invocation.GlobalString("storage"), os.Getenv, values.StorageDir))
	sysCfg.Freeze()
	slog.Debug("Configuration", "settings", sysCfg.GetSettingsFile(), "storage", sysCfg.GetStorageDir())

	// 6. Execute command
	managers := &cli.Managers{
		Disp:     disp,
		Cfg:      sysCfg,
		Settings: store,
		UI:       menu.NewTerminal(),
		Out:      os.Stdout,
	}
	cli.Register(cliEngine, managers)

	res, err := cliEngine.Execute(ctx, pr.Invocation)
	if err != nil {
		return nil, err
	}
	if res.Output != nil {
		disp.Render(res.Output)
	}
	return res, nil
}
