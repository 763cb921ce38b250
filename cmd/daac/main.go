// daac builds double-array Aho-Corasick automata from dictionaries, stores
// them in a local database and searches files with them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/petar-dambovaliev/daac/cmd/daac/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
