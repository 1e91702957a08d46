package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidgrab/internal/core"
	"vidgrab/internal/manager"
)

func resetFlags() {
	formatID, audioOnly, assetOnly = "", false, false
	configPath, backendURL, servePort, verbose = "config.json", "", 0, false
}

func TestChooseDownload(t *testing.T) {
	defer resetFlags()

	formats := &manager.Analysis{
		Result: &core.AnalysisResult{Kind: core.AnalysisFormats},
		Quality: core.BuildQualityList([]core.FormatDescriptor{
			{FormatID: "18", Ext: "mp4", Label: "360p"},
			{FormatID: "22", Ext: "mp4", Label: "720p"},
		}),
	}
	reel := &manager.Analysis{Result: &core.AnalysisResult{Kind: core.AnalysisSingleAsset}}

	testCases := []struct {
		name     string
		setup    func()
		analysis *manager.Analysis
		kind     core.DownloadKind
		format   string
	}{
		{"best tier by default", func() {}, formats, core.VideoDownload, "22"},
		{"tier flag", func() { formatID = "360p" }, formats, core.VideoDownload, "18"},
		{"raw format id", func() { formatID = "137" }, formats, core.VideoDownload, "137"},
		{"audio", func() { audioOnly = true }, formats, core.AudioDownload, ""},
		{"single asset", func() {}, reel, core.AssetDownload, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags()
			tc.setup()
			kind, format, err := chooseDownload(tc.analysis)
			if err != nil {
				t.Fatalf("chooseDownload failed: %v", err)
			}
			if kind != tc.kind || format != tc.format {
				t.Errorf("Expected %s/%q, got %s/%q", tc.kind, tc.format, kind, format)
			}
		})
	}
}

func TestChooseDownloadEmptyQuality(t *testing.T) {
	defer resetFlags()
	resetFlags()

	empty := &manager.Analysis{
		Result:  &core.AnalysisResult{Kind: core.AnalysisFormats},
		Quality: core.BuildQualityList(nil),
	}
	if _, _, err := chooseDownload(empty); err == nil {
		t.Error("Expected an error when no standard tier exists")
	}

	formatID = "137"
	kind, format, err := chooseDownload(empty)
	if err != nil {
		t.Fatalf("Expected an explicit format id to be used, got %v", err)
	}
	if kind != core.VideoDownload || format != "137" {
		t.Errorf("Expected video/137, got %s/%q", kind, format)
	}
}

func TestChooseDownloadRejects(t *testing.T) {
	defer resetFlags()

	formats := &manager.Analysis{
		Result: &core.AnalysisResult{Kind: core.AnalysisFormats},
		Quality: core.BuildQualityList([]core.FormatDescriptor{
			{FormatID: "22", Ext: "mp4", Label: "720p"},
		}),
	}
	reel := &manager.Analysis{Result: &core.AnalysisResult{Kind: core.AnalysisSingleAsset}}

	testCases := []struct {
		name     string
		setup    func()
		analysis *manager.Analysis
		contains string
	}{
		{"tier not offered", func() { formatID = "1440p" }, formats, "720p"},
		{"asset on a video link", func() { assetOnly = true }, formats, "--asset"},
		{"format on an instagram link", func() { formatID = "22" }, reel, "--format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags()
			tc.setup()
			kind, format, err := chooseDownload(tc.analysis)
			if err == nil {
				t.Fatalf("Expected an error, got %s/%q", kind, format)
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("Expected error to mention %q, got %v", tc.contains, err)
			}
		})
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	defer resetFlags()
	resetFlags()

	configPath = filepath.Join(t.TempDir(), "config.json")
	t.Setenv("VIDGRAB_PORT", "9090")
	t.Setenv("VIDGRAB_BACKEND_URL", "http://env-backend:5000")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Port != 9090 || cfg.BackendURL != "http://env-backend:5000" {
		t.Errorf("Expected env overrides, got port %d backend %s", cfg.Port, cfg.BackendURL)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Errorf("Expected default config file to be created: %v", err)
	}

	servePort = 7070
	backendURL = "http://flag-backend:5000"
	cfg, err = loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Port != 7070 || cfg.BackendURL != "http://flag-backend:5000" {
		t.Errorf("Expected flags to win, got port %d backend %s", cfg.Port, cfg.BackendURL)
	}

	backendURL = "ftp://nope"
	if _, err := loadConfig(); err == nil {
		t.Error("Expected invalid backend URL to fail validation")
	}
}
