package cookies

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ParseNetscape parses a Netscape cookies.txt stream.
// Each data line has 7 tab-separated fields:
// domain, include-subdomains flag, path, secure, expiration, name, value.
// Comment lines, blank lines, and malformed rows are dropped.
func ParseNetscape(r io.Reader) ([]Cookie, error) {
	var cookies []Cookie
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) != 7 {
			continue
		}

		domain := strings.TrimSpace(parts[0])
		if domain == "" {
			continue
		}
		includeSubdomains := strings.EqualFold(strings.TrimSpace(parts[1]), "TRUE")
		if includeSubdomains && !strings.HasPrefix(domain, ".") {
			domain = "." + domain
		}

		path := strings.TrimSpace(parts[2])
		secure := strings.EqualFold(strings.TrimSpace(parts[3]), "TRUE")
		expiration, _ := strconv.ParseInt(strings.TrimSpace(parts[4]), 10, 64)
		name := strings.TrimSpace(parts[5])
		value := strings.TrimSpace(parts[6])

		cookies = append(cookies, Cookie{
			Name:       name,
			Value:      value,
			Domain:     domain,
			Path:       path,
			Secure:     secure,
			Expiration: expiration,
			HTTPOnly:   inferHTTPOnly(name),
		})
	}

	return cookies, scanner.Err()
}

// LoadNetscape parses r and adds every cookie to the jar.
func (j *Jar) LoadNetscape(r io.Reader) error {
	cookies, err := ParseNetscape(r)
	if err != nil {
		return err
	}
	for _, c := range cookies {
		j.Set(c)
	}
	return nil
}
