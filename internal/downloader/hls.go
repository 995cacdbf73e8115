package downloader

import (
	"bufio"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HLSDownloader downloads a media playlist, following live refreshes
// until the playlist carries #EXT-X-ENDLIST.
type HLSDownloader struct {
	client      *http.Client
	playlistURL string
	headers     http.Header
	cfg         TransportConfig

	seen    map[string]bool
	lastSeq int
	initial bool
	skipped int
}

type hlsSegment struct {
	URL string
	Key *hlsKey
	Map string
	Seq int
}

type hlsKey struct {
	Method string
	URI    string
	IV     []byte
	Key    []byte
}

func NewHLSDownloader(client *http.Client, playlistURL string) *HLSDownloader {
	return &HLSDownloader{
		client:      client,
		playlistURL: playlistURL,
		seen:        make(map[string]bool),
		lastSeq:     -1,
		initial:     true,
	}
}

// WithRequestHeaders sends the given headers on every playlist, key and
// segment request.
func (h *HLSDownloader) WithRequestHeaders(headers http.Header) *HLSDownloader {
	h.headers = headers.Clone()
	return h
}

// WithTransportConfig sets the retry policy.
func (h *HLSDownloader) WithTransportConfig(cfg TransportConfig) *HLSDownloader {
	h.cfg = cfg
	return h
}

func (h *HLSDownloader) Download(ctx context.Context, w io.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := fetchBytes(ctx, h.client, h.playlistURL, h.headers, h.cfg)
		if err != nil {
			return fmt.Errorf("hls playlist: %w", err)
		}
		playlist := string(body)

		segments, targetDuration, err := h.parseSegments(ctx, playlist)
		if err != nil {
			return err
		}

		cfg := h.cfg.normalized()
		for _, seg := range segments {
			if seg.Seq <= h.lastSeq && h.lastSeq != -1 {
				continue
			}
			if h.seen[seg.URL] {
				continue
			}
			if err := h.downloadSegment(ctx, seg, w); err != nil {
				if cfg.skippable(err) && (cfg.MaxSkippedFragments == 0 || h.skipped < cfg.MaxSkippedFragments) {
					h.skipped++
					h.lastSeq = seg.Seq
					h.seen[seg.URL] = true
					continue
				}
				return fmt.Errorf("hls segment seq=%d: %w", seg.Seq, err)
			}
			h.lastSeq = seg.Seq
			h.seen[seg.URL] = true
		}

		if strings.Contains(playlist, "#EXT-X-ENDLIST") {
			return nil
		}
		refresh := time.Duration(targetDuration * float64(time.Second))
		if refresh <= 0 {
			refresh = 5 * time.Second
		}
		if err := waitBackoff(ctx, refresh); err != nil {
			return err
		}
	}
}

func (h *HLSDownloader) parseSegments(ctx context.Context, playlist string) ([]hlsSegment, float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(playlist))
	var (
		segments       []hlsSegment
		currentKey     *hlsKey
		currentMap     string
		targetDuration float64
	)
	seq := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			if v, err := strconv.ParseFloat(strings.TrimPrefix(line, "#EXT-X-TARGETDURATION:"), 64); err == nil {
				targetDuration = v
			}
		case strings.HasPrefix(line, "#EXT-X-MEDIA-SEQUENCE:"):
			if v, err := strconv.Atoi(strings.TrimPrefix(line, "#EXT-X-MEDIA-SEQUENCE:")); err == nil {
				seq = v
			}
		case strings.HasPrefix(line, "#EXT-X-KEY:"):
			key, err := h.parseKey(ctx, strings.TrimPrefix(line, "#EXT-X-KEY:"))
			if err != nil {
				return nil, 0, err
			}
			currentKey = key
		case strings.HasPrefix(line, "#EXT-X-MAP:"):
			attrs := parsePlaylistAttrs(strings.TrimPrefix(line, "#EXT-X-MAP:"))
			if uri := attrs["URI"]; uri != "" {
				currentMap = resolveURL(h.playlistURL, uri)
			}
		case strings.HasPrefix(line, "#EXTINF:"):
			if !scanner.Scan() {
				break
			}
			segURL := resolveURL(h.playlistURL, strings.TrimSpace(scanner.Text()))
			segments = append(segments, hlsSegment{
				URL: segURL,
				Key: currentKey,
				Map: currentMap,
				Seq: seq,
			})
			seq++
		}
	}
	return segments, targetDuration, nil
}

func (h *HLSDownloader) parseKey(ctx context.Context, attrLine string) (*hlsKey, error) {
	attrs := parsePlaylistAttrs(attrLine)
	key := &hlsKey{Method: attrs["METHOD"], URI: attrs["URI"]}
	if key.Method == "NONE" {
		return nil, nil
	}
	if ivHex, ok := attrs["IV"]; ok {
		iv, err := hex.DecodeString(strings.TrimPrefix(ivHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("hls key iv: %w", err)
		}
		key.IV = iv
	}
	if key.Method == "AES-128" {
		keyURL := resolveURL(h.playlistURL, key.URI)
		raw, err := fetchBytes(ctx, h.client, keyURL, h.headers, h.cfg)
		if err != nil {
			return nil, fmt.Errorf("hls key: %w", err)
		}
		key.Key = raw
	}
	return key, nil
}

func (h *HLSDownloader) downloadSegment(ctx context.Context, seg hlsSegment, w io.Writer) error {
	// The init segment precedes the first media segment that names it.
	if seg.Map != "" && h.initial && !h.seen[seg.Map] {
		body, err := fetchBytes(ctx, h.client, seg.Map, h.headers, h.cfg)
		if err != nil {
			return fmt.Errorf("hls init segment: %w", err)
		}
		if _, err := w.Write(body); err != nil {
			return err
		}
		h.seen[seg.Map] = true
	}
	h.initial = false

	body, err := fetchBytes(ctx, h.client, seg.URL, h.headers, h.cfg)
	if err != nil {
		return err
	}
	if seg.Key != nil && seg.Key.Method == "AES-128" {
		body, err = decryptAES128(body, seg.Key, seg.Seq)
		if err != nil {
			return err
		}
	}
	_, err = w.Write(body)
	return err
}

func decryptAES128(data []byte, key *hlsKey, seq int) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("encrypted segment not block aligned")
	}
	block, err := aes.NewCipher(key.Key)
	if err != nil {
		return nil, err
	}
	iv := key.IV
	if len(iv) == 0 {
		// Default IV is the big-endian media sequence number.
		iv = make([]byte, aes.BlockSize)
		binary.BigEndian.PutUint64(iv[8:], uint64(seq))
	}
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(data, data)

	padding := int(data[len(data)-1])
	if padding == 0 || padding > len(data) || padding > aes.BlockSize {
		return nil, fmt.Errorf("bad segment padding")
	}
	return data[:len(data)-padding], nil
}

// parsePlaylistAttrs splits an m3u8 attribute list, honoring quoted
// values with embedded commas.
func parsePlaylistAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for len(s) > 0 {
		eq := strings.Index(s, "=")
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(s[:eq])
		s = s[eq+1:]

		var value string
		if strings.HasPrefix(s, `"`) {
			end := strings.Index(s[1:], `"`)
			if end < 0 {
				value = s[1:]
				s = ""
			} else {
				value = s[1 : 1+end]
				s = strings.TrimPrefix(s[2+end:], ",")
			}
		} else if comma := strings.Index(s, ","); comma >= 0 {
			value, s = s[:comma], s[comma+1:]
		} else {
			value, s = s, ""
		}
		attrs[key] = value
	}
	return attrs
}
