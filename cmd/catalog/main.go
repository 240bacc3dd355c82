// Command catalog queries and maintains the course catalog.
//
// Subcommands:
//
//	migrate   apply database migrations
//	seed      load courses from a YAML file
//	search    search courses and page through the results
//	show      print one stored course
//	version   print version information
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/course-catalog/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
