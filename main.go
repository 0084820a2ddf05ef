package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"blockpad/internal/app"
	"blockpad/internal/content"
	mcpserver "blockpad/internal/mcp"
	"blockpad/internal/ui"
)

func usage() {
	fmt.Fprintf(os.Stderr, `blockpad — block editor for a file-based portfolio site

Usage:
  blockpad [-config path] edit <slug|about>   edit a page interactively
  blockpad [-config path] list                list editable pages
  blockpad [-config path] mcp                 serve editor tools over MCP (stdio)
  blockpad [-config path] watch               log page changes on disk
`)
	os.Exit(2)
}

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/blockpad/config.yaml)")
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	if *configPath == "" {
		p, err := app.DefaultConfigPath()
		if err != nil {
			fatal(err)
		}
		*configPath = p
	}
	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	log, err := app.NewLogger(cfg.Log)
	if err != nil {
		fatal(err)
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		fatal(err)
	}
	a.Start()
	defer a.Close()

	switch args[0] {
	case "edit":
		if len(args) != 2 {
			usage()
		}
		if err := ui.Run(a, args[1]); err != nil {
			fatal(err)
		}
	case "list":
		slugs, err := a.Store().ListProjects()
		if err != nil {
			fatal(err)
		}
		fmt.Println(content.AboutSlug)
		for _, s := range slugs {
			fmt.Println(s)
		}
	case "mcp":
		if err := mcpserver.New(a).ServeStdio(); err != nil {
			fatal(err)
		}
	case "watch":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err := a.Store().Watch(ctx, func(page string) {
			log.Info("page changed", zap.String("page", page))
		})
		if err != nil && ctx.Err() == nil {
			fatal(err)
		}
	default:
		usage()
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "blockpad:", err)
	os.Exit(1)
}
