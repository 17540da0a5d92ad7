package model

import "time"

// Shared defaults used by the kiosk binary and its packages.
const (
	DefaultRefreshTTL      = 60 * time.Second
	DefaultFetchTimeout    = 10 * time.Second
	DefaultRetryBackoff    = 5 * time.Second
	DefaultRetryBackoffMax = 60 * time.Second
	DefaultFPS             = 60
	DefaultFontSize        = 1
	DefaultTimezone        = "Local"
	DefaultAPIAddr         = "127.0.0.1:3000"
	DefaultLogLevel        = "info"
)
