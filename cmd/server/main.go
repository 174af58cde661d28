package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/presence-bridge/backend/internal/activity"
	"github.com/presence-bridge/backend/internal/config"
	"github.com/presence-bridge/backend/internal/connector"
	"github.com/presence-bridge/backend/internal/detect"
	"github.com/presence-bridge/backend/internal/ipc"
	"github.com/presence-bridge/backend/internal/mock"
	"github.com/presence-bridge/backend/internal/ws"
)

func main() {
	mockMode := flag.Bool("mock", false, "Feed scripted process events instead of scanning the OS")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	welcomePath := flag.String("welcome", "", "Path to a file whose contents are sent to each client on connect")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *port > 0 {
		cfg.Server.Port = *port
	}

	welcome := cfg.Welcome
	if *welcomePath != "" {
		data, err := os.ReadFile(*welcomePath)
		if err != nil {
			log.Fatalf("Failed to read welcome payload: %v", err)
		}
		welcome = string(data)
	}

	events := make(chan ws.Event, 64)
	ipcCh := make(chan activity.Cmd, 64)
	procCh := make(chan activity.ProcessEvent, 64)
	sockCh := make(chan activity.Cmd, 64)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := connector.New(welcome, events, ipcCh, procCh, sockCh)
	conn.Run(ctx)

	if *mockMode {
		log.Println("Starting in mock mode (scripted process events)")
		mock.NewGenerator(procCh).Start(ctx)
	} else {
		go detect.NewWatcher(cfg, procCh).Start(ctx)
	}

	ipcSrv := ipc.NewServer(cfg.IPC.SocketPath, ipcCh)
	if err := ipcSrv.Start(ctx); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}

	server := ws.NewServer(events, sockCh, cfg.Server.AllowedOrigins, cfg.Server.AuthToken)
	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		ipcSrv.Close()
		os.Exit(0)
	}()

	if err := ws.ListenAndServe(cfg.Server.Host, cfg.Server.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
