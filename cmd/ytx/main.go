// Command ytx extracts and downloads video streams.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/famomatic/ytx/client"
	"github.com/famomatic/ytx/internal/cli"
	"github.com/famomatic/ytx/internal/downloader"
	"github.com/famomatic/ytx/internal/formats"
	"github.com/famomatic/ytx/internal/muxer"
	"github.com/famomatic/ytx/internal/selector"
)

func main() {
	opts, err := cli.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	if len(opts.URLs) == 0 {
		fmt.Fprintln(os.Stderr, "ytx: no URLs given")
		os.Exit(2)
	}

	cfg, err := cli.ToClientConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ytx: %v\n", err)
		os.Exit(1)
	}
	if opts.Verbose {
		cfg.OnExtractionEvent = func(ev client.ExtractionEvent) {
			fmt.Fprintln(os.Stderr, formatExtractionEvent(ev))
		}
	}

	c, err := client.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ytx: %v\n", err)
		os.Exit(1)
	}

	var archive *downloadArchive
	if opts.DownloadArchive != "" {
		archive, err = newDownloadArchive(opts.DownloadArchive)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ytx: %v\n", err)
			os.Exit(1)
		}
		defer archive.Close()
	}

	failed := 0
	for _, rawURL := range opts.URLs {
		if err := runURL(context.Background(), c, archive, rawURL, opts); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "ytx: %s: %v\n", rawURL, err)
			if opts.AbortOnError {
				os.Exit(1)
			}
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func formatExtractionEvent(ev client.ExtractionEvent) string {
	s := "[extract] " + string(ev.Stage)
	if ev.Client != "" {
		s += " client=" + ev.Client
	}
	if ev.Detail != "" {
		s += " detail=" + ev.Detail
	}
	return s
}

func runURL(ctx context.Context, c *client.Client, archive *downloadArchive, rawURL string, opts cli.Options) error {
	videoID, err := client.ExtractVideoID(rawURL)
	if err != nil {
		return err
	}
	if archive != nil && archive.Has(videoID) {
		fmt.Printf("%s: already recorded in archive, skipping\n", videoID)
		return nil
	}

	manifest, err := c.GetManifest(ctx, rawURL)
	if err != nil {
		return err
	}
	info, err := c.GetVideoInfoFromManifest(ctx, manifest)
	if err != nil {
		return err
	}

	if opts.PrintJSON {
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		if opts.SkipDownload {
			return nil
		}
	}

	streams, err := c.GetStreamsFromManifest(ctx, manifest)
	if err != nil {
		return err
	}

	if opts.ListFormats {
		printStreamTable(info, streams.Streams)
		return nil
	}

	sel, err := selector.Parse(opts.FormatSelector)
	if err != nil {
		return err
	}
	picked := selector.Select(streams.Streams, sel)
	if len(picked) == 0 {
		return fmt.Errorf("no stream matches %q", opts.FormatSelector)
	}

	urls, err := c.ResolveStreams(ctx, manifest, picked)
	if err != nil {
		return err
	}

	if opts.SkipDownload {
		for _, u := range urls {
			fmt.Println(u)
		}
		return nil
	}

	paths := make([]string, len(picked))
	for i, stream := range picked {
		path := outputPath(opts.OutputTemplate, info, stream)
		if len(picked) > 1 {
			path = fmt.Sprintf("%s.f%s", path, stream.Itag)
		}
		if err := downloadStream(ctx, urls[i], path, opts); err != nil {
			return err
		}
		paths[i] = path
	}

	final := paths[0]
	if len(paths) == 2 {
		merged, err := mergeTracks(ctx, paths, picked, info, opts)
		if err != nil {
			return err
		}
		final = merged
	}
	fmt.Printf("%s: saved to %s\n", videoID, final)

	if archive != nil {
		return archive.Add(videoID)
	}
	return nil
}

func printStreamTable(info *client.VideoInfo, streams []client.StreamDescriptor) {
	fmt.Printf("%s (%s views)\n", info.Title, formats.CompactCount(info.ViewCount))
	fmt.Printf("%-6s %-6s %-11s %-10s %-14s %-14s %s\n",
		"itag", "ext", "resolution", "fps", "size", "vcodec", "acodec")
	for _, s := range streams {
		size := ""
		switch {
		case s.ContentLength > 0:
			size = formats.HumanReadableSize(s.ContentLength)
		case s.ApproxFileSize > 0:
			size = "~" + formats.HumanReadableSize(s.ApproxFileSize)
		}
		fps := ""
		if s.FPS > 0 {
			fps = fmt.Sprintf("%d", s.FPS)
		}
		fmt.Printf("%-6s %-6s %-11s %-10s %-14s %-14s %s\n",
			s.Itag, s.Ext, formats.Resolution(s.Height, s.Width), fps, size, s.VCodec, s.ACodec)
	}
}

func downloadStream(ctx context.Context, rawURL, path string, opts cli.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dl := downloader.NewProgressiveDownloader(http.DefaultClient, rawURL, opts.Workers).
		WithTransportConfig(cli.ToTransportConfig(opts))
	if _, err := dl.Download(ctx, f); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func mergeTracks(ctx context.Context, paths []string, picked []client.StreamDescriptor, info *client.VideoInfo, opts cli.Options) (string, error) {
	mux := muxer.NewFFmpegMuxer(opts.FFmpegLocation)
	if !mux.Available() {
		return "", errors.New("ffmpeg not found, cannot merge video and audio")
	}
	out := outputPath(opts.OutputTemplate, info, picked[0])
	meta := muxer.Metadata{
		Title:       info.Title,
		Artist:      info.Channel,
		Date:        time.Now().Format("2006-01-02"),
		Description: info.Description,
	}
	if err := mux.Merge(ctx, paths[0], paths[1], out, meta); err != nil {
		return "", err
	}
	return out, nil
}
