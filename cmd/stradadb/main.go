package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanonone/stradadb/internal/server"
	"github.com/sanonone/stradadb/pkg/engine"
)

func main() {
	configPath := flag.String("config", "stradadb.yaml", "Path to the server configuration file")
	httpAddr := flag.String("http-addr", "", "Listen address override, e.g. :5000 (defaults to the config value)")

	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Cannot load configuration: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	eng, err := engine.New(engine.Options{
		Paths:           cfg.Dataset.Paths(),
		UseSharedMemory: cfg.Dataset.UseSharedMemory,
	})
	if err != nil {
		log.Fatalf("Cannot start the engine: %v", err)
	}
	defer eng.Close()

	srv := server.NewServer(eng, cfg.HTTPAddr)

	// listen for the interruption signal (Ctrl+c)
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	// run the HTTP server in a goroutine so main can wait on the signal
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatal(err)
		}
	}()

	<-shutdownChan

	srv.Shutdown()
}
