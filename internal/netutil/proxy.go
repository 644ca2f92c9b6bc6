// Package netutil holds small helpers shared by the outbound HTTP clients.
package netutil

import (
	"net/http"
	"net/url"
)

// ProxyFunc returns a proxy selector for http.Transport. Explicit proxy URLs
// win; with neither set the environment variables apply.
func ProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
