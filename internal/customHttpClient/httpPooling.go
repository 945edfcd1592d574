package customHttpClient

import (
	"net/http"

	"github.com/getai/ragstore/internal/config"
)

var pooledTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// PooledClient returns a client sharing one keep-alive transport; the
// embedding provider makes many short calls and should reuse connections.
func PooledClient() *http.Client {
	return &http.Client{Transport: pooledTransport}
}
