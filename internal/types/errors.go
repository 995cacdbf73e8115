package types

import "errors"

var (
	// ErrInvalidInput indicates malformed caller input (video ID, URL, or query).
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransport indicates a network or IO failure on an HTTP call.
	ErrTransport = errors.New("transport error")

	// ErrDecode indicates a JSON parse failure or an unexpected payload shape.
	ErrDecode = errors.New("decode error")

	// ErrDataMissing indicates a required scraped blob was absent from the page.
	ErrDataMissing = errors.New("required data missing")

	// ErrPlayerIdentification indicates no fingerprint pattern matched the player URL.
	ErrPlayerIdentification = errors.New("player identification failed")

	// ErrDecipher indicates the signature solver failed or returned a bad shape.
	ErrDecipher = errors.New("decipher failed")

	// ErrAuth indicates the cookie jar was unusable or auth headers could not be built.
	ErrAuth = errors.New("auth error")

	// ErrNoPlayerResponse indicates every selected client was tried and none was accepted.
	ErrNoPlayerResponse = errors.New("no player response")
)
