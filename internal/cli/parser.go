// Package cli parses command line options and maps them onto the client
// configuration.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/famomatic/ytx/client"
	"github.com/famomatic/ytx/internal/downloader"
)

// Options holds every command line option.
type Options struct {
	URLs []string

	// Network
	ProxyURL    string
	CookiesFile string

	// Selection
	FormatSelector string
	ListFormats    bool

	// Download
	OutputTemplate  string
	DownloadArchive string
	SkipDownload    bool
	AbortOnError    bool
	DownloadRetries int
	RetrySleepMS    int
	Workers         int

	// Advanced
	ClientsOverride string
	PoToken         string
	FFmpegLocation  string

	// Output
	PrintJSON bool
	Verbose   bool
}

// ParseFlags parses args (without the program name) into Options.
func ParseFlags(args []string, stderr io.Writer) (Options, error) {
	opts := Options{}
	fs := flag.NewFlagSet("ytx", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.FormatSelector, "f", "best", "Stream selection expression")
	fs.StringVar(&opts.FormatSelector, "format", "best", "Stream selection expression")
	fs.BoolVar(&opts.ListFormats, "F", false, "List available streams and exit")
	fs.BoolVar(&opts.ListFormats, "list-formats", false, "List available streams and exit")

	fs.StringVar(&opts.OutputTemplate, "o", "%(title)s.%(ext)s", "Output filename template")
	fs.StringVar(&opts.OutputTemplate, "output", "%(title)s.%(ext)s", "Output filename template")

	fs.StringVar(&opts.ProxyURL, "proxy", "", "HTTP/HTTPS proxy URL")
	fs.StringVar(&opts.CookiesFile, "cookies", "", "Netscape formatted cookies file")

	fs.StringVar(&opts.DownloadArchive, "download-archive", "", "File recording downloaded video ids, skipped on rerun")
	fs.BoolVar(&opts.SkipDownload, "skip-download", false, "Resolve and print stream URLs without downloading")
	fs.BoolVar(&opts.AbortOnError, "abort-on-error", false, "Stop the batch at the first failing URL")
	fs.IntVar(&opts.DownloadRetries, "retries", -1, "Download retry count (-1 keeps defaults)")
	fs.IntVar(&opts.RetrySleepMS, "retry-sleep-ms", -1, "Initial retry backoff in milliseconds (-1 keeps defaults)")
	fs.IntVar(&opts.Workers, "workers", 4, "Parallel range workers per progressive download")

	fs.StringVar(&opts.ClientsOverride, "clients", "", "Comma-separated client trial order override")
	fs.StringVar(&opts.PoToken, "po-token", "", "Static proof-of-origin token")
	fs.StringVar(&opts.FFmpegLocation, "ffmpeg-location", "", "Path to the ffmpeg binary")

	fs.BoolVar(&opts.PrintJSON, "print-json", false, "Print video metadata as JSON")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Print extraction progress")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: ytx [OPTIONS] URL [URL...]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.URLs = fs.Args()
	return opts, nil
}

// ToClientConfig maps Options onto a client Config.
func ToClientConfig(opts Options) (client.Config, error) {
	cfg := client.Config{ProxyURL: opts.ProxyURL}

	if token := strings.TrimSpace(opts.PoToken); token != "" {
		cfg.PoTokenProvider = staticPoTokenProvider(token)
	}

	for _, name := range strings.Split(opts.ClientsOverride, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			cfg.ClientOverrides = append(cfg.ClientOverrides, client.ClientID(name))
		}
	}

	if opts.CookiesFile != "" {
		f, err := os.Open(opts.CookiesFile)
		if err != nil {
			return cfg, fmt.Errorf("open cookies file: %w", err)
		}
		defer f.Close()
		parsed, err := client.ParseNetscapeCookies(f)
		if err != nil {
			return cfg, fmt.Errorf("parse cookies file: %w", err)
		}
		cfg.AuthCookies = parsed
	}

	return cfg, nil
}

// ToTransportConfig maps the retry options onto the download transport.
func ToTransportConfig(opts Options) downloader.TransportConfig {
	cfg := downloader.TransportConfig{}
	if opts.DownloadRetries >= 0 {
		cfg.MaxRetries = opts.DownloadRetries
	}
	if opts.RetrySleepMS >= 0 {
		cfg.InitialBackoff = time.Duration(opts.RetrySleepMS) * time.Millisecond
	}
	return cfg
}

type staticPoTokenProvider string

func (p staticPoTokenProvider) GetToken(context.Context, string) (string, error) {
	return string(p), nil
}
