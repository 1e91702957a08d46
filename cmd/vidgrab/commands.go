package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidgrab/internal/core"
	"vidgrab/internal/history"
	"vidgrab/internal/manager"
	"vidgrab/internal/utils"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Show the platform, title and quality tiers of a link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp()
		if err != nil {
			return err
		}
		defer a.controller.Shutdown()

		analysis, err := a.controller.Analyze(cmd.Context(), args[0])
		if err != nil {
			a.term.Notice(a.controller.Snapshot().Notice)
			return err
		}
		a.term.Analysis(analysis)
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Analyze a link and download it",
	Long: `Analyze a link and download it into the download directory.

Videos default to the highest standard quality tier; pick another with --format,
which accepts a tier such as 720p or a backend format id. Instagram links are
downloaded as a single asset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp()
		if err != nil {
			return err
		}
		defer a.controller.Shutdown()

		ctx := cmd.Context()
		analysis, err := a.controller.Analyze(ctx, args[0])
		if err != nil {
			a.term.Notice(a.controller.Snapshot().Notice)
			return err
		}
		a.term.Analysis(analysis)

		kind, format, err := chooseDownload(analysis)
		if err != nil {
			return err
		}

		result, err := runWithProgress(ctx, a, kind, format)
		if err != nil {
			a.term.Notice(a.controller.Snapshot().Notice)
			return err
		}
		a.term.Saved(result.LocalPaths)
		a.term.Notice(a.controller.Snapshot().Notice)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished downloads, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp()
		if err != nil {
			return err
		}
		defer a.controller.Shutdown()

		entries, err := a.controller.History()
		if err != nil {
			return err
		}
		a.term.History(entries, history.EmptyMessage)
		return nil
	},
}

var redownloadCmd = &cobra.Command{
	Use:   "redownload <id>",
	Short: "Download the file of a history entry again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp()
		if err != nil {
			return err
		}
		defer a.controller.Shutdown()

		local, err := a.controller.Redownload(cmd.Context(), args[0])
		if err != nil {
			a.term.Notice(a.controller.Snapshot().Notice)
			return err
		}
		a.term.Saved([]string{local})
		return nil
	},
}

// newCLIApp builds the app with log output moved to stderr so it does not
// interleave with the progress line.
func newCLIApp() (*app, error) {
	utils.SetLogOutput(os.Stderr)
	return newApp()
}

// chooseDownload maps the download flags and the analysis onto a kind and format
func chooseDownload(analysis *manager.Analysis) (core.DownloadKind, string, error) {
	singleAsset := analysis.Result.Kind == core.AnalysisSingleAsset

	switch {
	case audioOnly:
		return core.AudioDownload, "", nil
	case assetOnly && !singleAsset:
		return "", "", errors.New("--asset only applies to Instagram links")
	case singleAsset && formatID != "":
		return "", "", errors.New("--format does not apply to Instagram links")
	case singleAsset:
		return core.AssetDownload, "", nil
	}

	if formatID != "" {
		if row, ok := analysis.Quality.Find(formatID); ok {
			return core.VideoDownload, row.FormatID, nil
		}
		if tier, ok := core.ResolutionTag(formatID); ok && string(tier) == formatID {
			return "", "", fmt.Errorf("quality %s is not offered for this video (available: %s)", formatID, tierNames(analysis.Quality))
		}
		// Unlisted ids go to the backend as given
		return core.VideoDownload, formatID, nil
	}

	if analysis.Quality.Empty {
		return "", "", fmt.Errorf("%s (try --audio or --format <id>)", analysis.Quality.Message)
	}

	best, _ := analysis.Quality.Best()
	return core.VideoDownload, best.FormatID, nil
}

func tierNames(list core.QualityList) string {
	if list.Empty {
		return "none"
	}
	names := make([]string, 0, len(list.Rows))
	for _, row := range list.Rows {
		names = append(names, string(row.Tier))
	}
	return strings.Join(names, ", ")
}

// runWithProgress runs a download and redraws the progress line until it finishes
func runWithProgress(ctx context.Context, a *app, kind core.DownloadKind, format string) (*manager.DownloadResult, error) {
	type outcome struct {
		result *manager.DownloadResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := a.controller.Download(ctx, kind, format)
		done <- outcome{result, err}
	}()

	ticker := time.NewTicker(a.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case o := <-done:
			a.term.Progress(a.controller.Snapshot().Download)
			a.term.EndProgress()
			return o.result, o.err
		case <-ticker.C:
			a.term.Progress(a.controller.Snapshot().Download)
		}
	}
}
