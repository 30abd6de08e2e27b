package mcp

import (
	"context"
	"os"
	"time"

	"fuzzynews/internal/logging"
)

// ParentPollInterval is how often WatchParent checks the parent PID.
var ParentPollInterval = 2 * time.Second

// WatchParent cancels the stdio server when the process that spawned it
// goes away, so an editor restart does not leave orphaned servers behind.
//
// It must not read stdin: the SDK's StdioTransport owns it, and stolen
// bytes would corrupt the JSON-RPC stream.
//
// The goroutine exits when ctx is cancelled or the parent changes.
func WatchParent(ctx context.Context, cancel context.CancelFunc) {
	ppid := os.Getppid()
	go func() {
		ticker := time.NewTicker(ParentPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if os.Getppid() != ppid {
					logging.New("mcp").Warn("parent process exited, shutting down", "ppid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
