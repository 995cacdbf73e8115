package client

import "github.com/famomatic/ytx/internal/types"

// The package surfaces the extraction pipeline's sentinel errors so
// callers can match with errors.Is without importing internal packages.
var (
	ErrInvalidInput         = types.ErrInvalidInput
	ErrTransport            = types.ErrTransport
	ErrDecode               = types.ErrDecode
	ErrDataMissing          = types.ErrDataMissing
	ErrPlayerIdentification = types.ErrPlayerIdentification
	ErrDecipher             = types.ErrDecipher
	ErrAuth                 = types.ErrAuth
	ErrNoPlayerResponse     = types.ErrNoPlayerResponse
)
