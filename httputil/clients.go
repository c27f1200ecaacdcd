package httputil

import (
	"net/http"
	"time"
)

// Clients separates the two fetch profiles: bulk listing feeds can run for
// minutes, live lookups must stay snappy.
type Clients struct {
	Feed *http.Client // bulk feeds: MyHome search, Acquaint XML, Daft/4PM
	Live *http.Client // live lookups and WordPress CPT reads
}

func NewClients(feedTimeout, liveTimeout time.Duration) *Clients {
	if feedTimeout <= 0 {
		feedTimeout = 600 * time.Second
	}
	if liveTimeout <= 0 {
		liveTimeout = 30 * time.Second
	}
	return &Clients{
		Feed: &http.Client{Timeout: feedTimeout},
		Live: &http.Client{Timeout: liveTimeout},
	}
}
