// Command karel-world-sim starts the Karel world simulator server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server against the same world service
//
// Flags control host/port, the worlds and sessions directories, and debug
// logging. A .env file in the working directory is loaded when present.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/karel-world-sim/api"
	"github.com/wricardo/karel-world-sim/pkg/logger"
	"github.com/wricardo/karel-world-sim/sim/catalog"
	"github.com/wricardo/karel-world-sim/sim/service"
	"github.com/wricardo/karel-world-sim/sim/session"
	"github.com/wricardo/karel-world-sim/transport/mcp"
	"github.com/wricardo/karel-world-sim/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Karel World Simulator"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	logger.Init()

	cmd := &cli.Command{
		Name:    "karel-world-sim",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "worlds-dir",
				Value:   "worlds",
				Usage:   "Directory containing world files",
				Sources: cli.EnvVars("WORLDS_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory for persisted sessions",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyDebug(cmd)
			deps, err := initializeServices(cmd)
			if err != nil {
				return err
			}
			return runHTTPServer(cmd, deps)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server (default)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					applyDebug(cmd)
					deps, err := initializeServices(cmd)
					if err != nil {
						return err
					}
					return runHTTPServer(cmd, deps)
				},
			},
			{
				Name:  "mcp",
				Usage: "Run an MCP stdio server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					applyDebug(cmd)
					deps, err := initializeServices(cmd)
					if err != nil {
						return err
					}
					return runStdioMCP(deps)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Log.WithError(err).Fatal("server exited")
	}
}

func applyDebug(cmd *cli.Command) {
	if cmd.Bool("debug") {
		logger.Log.SetLevel(logrus.DebugLevel)
	}
}

// serverDeps bundles the wired components shared by both modes.
type serverDeps struct {
	service  service.WorldService
	sessions *session.Manager
}

// initializeServices wires the world catalog, session persistence, and the
// world service. It also starts the background session cleanup and
// filesystem sync routines.
func initializeServices(cmd *cli.Command) (*serverDeps, error) {
	worldCatalog, err := catalog.NewManager(cmd.String("worlds-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create world catalog: %w", err)
	}

	persistence, err := session.NewFilePersistence(cmd.String("sessions-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)

	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Log.WithError(err).Warn("failed to load persisted sessions")
	}

	worldService := service.NewWorldService(sessionManager, worldCatalog)

	go sessionCleanupRoutine(sessionManager)
	go filesystemSyncRoutine(sessionManager, persistence)

	return &serverDeps{service: worldService, sessions: sessionManager}, nil
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an
// /mcp endpoint that speaks MCP over plain HTTP POST.
func runHTTPServer(cmd *cli.Command, deps *serverDeps) error {
	hub := websocket.NewHub()
	go hub.Run()

	apiServer := api.NewServer(deps.service, hub)
	mcpSrv := mcp.NewServer(deps.service)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpSrv.MCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Log.WithFields(logrus.Fields{
			"addr":      addr,
			"rest":      fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Info("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	sig := <-stop
	logger.Log.WithField("signal", sig.String()).Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("HTTP server shutdown error")
	}

	if err := deps.sessions.SaveAllSessions(); err != nil {
		logger.Log.WithError(err).Warn("failed to save sessions on shutdown")
	}

	logger.Log.Info("server stopped")
	return nil
}

// runStdioMCP runs an MCP stdio server (blocking). The world service is
// shared with the HTTP mode, so worlds and persisted sessions behave the
// same in both.
func runStdioMCP(deps *serverDeps) error {
	mcpSrv := mcp.NewServer(deps.service)

	logger.Log.Info("MCP stdio server ready")

	if err := mcpserver.ServeStdio(mcpSrv.MCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window.
func sessionCleanupRoutine(manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(24 * time.Hour)
		if removed > 0 {
			logger.Log.WithField("count", removed).Info("cleaned up expired sessions")
		}
	}
}

// filesystemSyncRoutine prunes sessions from memory when their files are
// deleted out from under the server.
func filesystemSyncRoutine(manager *session.Manager, persistence session.Persistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if persistence == nil {
			continue
		}

		pruned := 0
		for _, sess := range manager.List() {
			if !persistence.Exists(sess.ID) {
				if err := manager.DeleteFromMemory(sess.ID); err == nil {
					pruned++
				}
			}
		}

		if pruned > 0 {
			logger.Log.WithField("count", pruned).Info("pruned orphaned sessions from memory")
		}
	}
}
