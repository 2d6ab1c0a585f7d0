// Command versod runs the verso daemon in the foreground. The verso CLI
// launches it detached via `verso daemon`; this binary exists for init
// systems that want to supervise the daemon directly.
package main

import (
	"context"
	"flag"
	"log"

	"verso/internal/config"
	"verso/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	socketPath := flag.String("socket", "", "IPC socket path override")
	logLevel := flag.String("log-level", "", "log level override")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel:   *logLevel,
		SocketPath: *socketPath,
	}); err != nil {
		log.Fatalf("run daemon: %v", err)
	}
}
