package connection

import "errors"

// ErrProtocolUnsupported is returned by Dial when the address names an
// unrecognised scheme or has no scheme separator. All transports are
// always compiled in; no build tag disables one.
var ErrProtocolUnsupported = errors.New("Protocol unsupported")
