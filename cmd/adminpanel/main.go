package main

import (
	"fmt"
	"log"
	"os"

	"github.com/eringen/adminpanel"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cfg, err := adminpanel.LoadConfig(configPath())
		if err != nil {
			log.Fatal(err)
		}
		app := adminpanel.New(cfg)
		if err := app.Start(); err != nil {
			log.Fatal(err)
		}
	case "list":
		if err := runList(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "init":
		dir := "."
		if len(os.Args) > 2 {
			dir = os.Args[2]
		}
		if err := runInit(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("adminpanel %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func configPath() string {
	return adminpanel.EnvOr("ADMINPANEL_CONFIG", "adminpanel.yaml")
}

func printUsage() {
	fmt.Println(`adminpanel - A server-rendered admin panel for a content REST backend

Usage:
  adminpanel <command> [arguments]

Commands:
  serve                     Start the web panel
  list <kind> [flags]       Print one page of blogs, key-features, types or categories
  init [dir]                Write .env.example and adminpanel.yaml
  version                   Print the adminpanel version
  help                      Show this help message

List flags:
  -q string    name filter
  -page int    page number (default 1)
  -size int    page size (default 10)

Configuration is read from adminpanel.yaml (or $ADMINPANEL_CONFIG), .env
and the environment.

Examples:
  adminpanel init
  adminpanel serve
  adminpanel list blogs -q go -page 2`)
}
