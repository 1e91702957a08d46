package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"vidgrab/internal/api"
	"vidgrab/internal/ui"
	"vidgrab/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local web UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.controller.Shutdown()

		apiHandler := api.NewHandler(a.cfg, a.controller)
		uiHandler := ui.NewTemplateHandler(a.controller)
		router := api.SetupRoutes(apiHandler, uiHandler)

		addr := fmt.Sprintf(":%d", a.cfg.Port)
		fmt.Printf("Starting vidgrab server...\n")
		fmt.Printf("Port: %d\n", a.cfg.Port)
		fmt.Printf("Backend: %s\n", a.client.BaseURL())
		fmt.Printf("Download path: %s\n", a.cfg.DownloadPath)
		fmt.Printf("History file: %s\n", a.cfg.HistoryFile())

		server := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		listener, err := net.Listen("tcp", addr)
		if err != nil {
			fmt.Printf("\nFailed to start server on port %d: %v\n", a.cfg.Port, err)
			fmt.Printf("\nTo change the port, you can:\n")
			fmt.Printf("1. Edit %s and change the \"port\" value\n", configPath)
			fmt.Printf("2. Use command line: vidgrab serve --port 3000\n")
			fmt.Printf("3. Use environment variable: VIDGRAB_PORT=3000 vidgrab serve\n")
			return err
		}

		fmt.Printf("✓ Server is ready and listening on http://localhost%s\n", addr)
		fmt.Printf("Press Ctrl+C to stop the server\n")

		serverErrChan := make(chan error, 1)
		go func() {
			if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
				serverErrChan <- err
			}
		}()

		select {
		case <-cmd.Context().Done():
			fmt.Printf("\nShutting down gracefully...\n")
		case err := <-serverErrChan:
			utils.LogError("SERVER", "Server error: %v", err)
			return err
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			utils.LogError("SERVER", "Error during server shutdown: %v", err)
		}

		fmt.Printf("✓ Server shutdown complete\n")
		return nil
	},
}
