package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"vidgrab/internal/backend"
	"vidgrab/internal/config"
	"vidgrab/internal/history"
	"vidgrab/internal/manager"
	"vidgrab/internal/ui"
	"vidgrab/internal/utils"
)

// Version is set via ldflags during build
var Version = "dev"

// Command line flags
var (
	configPath string
	backendURL string
	verbose    bool
	servePort  int
	formatID   string
	audioOnly  bool
	assetOnly  bool
)

var rootCmd = &cobra.Command{
	Use:           "vidgrab",
	Short:         "Analyze and download videos through a media backend",
	Long:          `vidgrab classifies video links, lists the standard MP4 quality tiers a backend offers, downloads the chosen variant with live progress and keeps a history of finished downloads.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides config file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to run the server on (overrides config file)")

	downloadCmd.Flags().StringVarP(&formatID, "format", "f", "", "Format id or quality tier (default: best available tier)")
	downloadCmd.Flags().BoolVar(&audioOnly, "audio", false, "Download MP3 audio instead of video")
	downloadCmd.Flags().BoolVar(&assetOnly, "asset", false, "Download the single asset of an Instagram post")
	downloadCmd.MarkFlagsMutuallyExclusive("format", "audio", "asset")

	rootCmd.AddCommand(serveCmd, analyzeCmd, downloadCmd, historyCmd, redownloadCmd)
}

// app bundles the components every command works with
type app struct {
	cfg        *config.Config
	client     *backend.Client
	fetcher    *backend.FileFetcher
	controller *manager.Controller
	term       *ui.Terminal
}

// loadConfig reads the config file and applies environment and flag
// overrides. Flags win over the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if envPort := os.Getenv("VIDGRAB_PORT"); envPort != "" {
		if parsedPort, err := strconv.Atoi(envPort); err == nil && parsedPort > 0 {
			cfg.Port = parsedPort
		}
	}
	if envBackend := os.Getenv("VIDGRAB_BACKEND_URL"); envBackend != "" {
		cfg.BackendURL = envBackend
	}

	if servePort > 0 {
		cfg.Port = servePort
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if verbose {
		cfg.VerboseLogging = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	utils.SetVerboseLogging(cfg.VerboseLogging)

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	client, err := backend.NewClient(backend.Settings{
		BaseURL:              cfg.BackendURL,
		UserAgent:            cfg.UserAgent,
		RequestTimeout:       cfg.RequestTimeout(),
		MaxRequestsPerSecond: cfg.MaxRequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}

	fetcher := backend.NewFileFetcher(client, cfg.DownloadPath)
	store := history.NewStore(cfg.HistoryFile(), cfg.HistoryLimit)
	controller := manager.NewController(client, fetcher, store, manager.Options{
		PollInterval: cfg.PollInterval(),
	})

	return &app{
		cfg:        cfg,
		client:     client,
		fetcher:    fetcher,
		controller: controller,
		term:       ui.NewTerminal(os.Stdout),
	}, nil
}
