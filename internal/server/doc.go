// Package server exposes compiled schemas over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness probe, always "ALIVE"
//	GET  /schemas          JSON list of schema names
//	POST /check/{schema}   check every document in the request body
//	GET  /metrics          Prometheus metrics
//
// The request body of /check is decoded by Content-Type: application/json
// (the default), application/yaml, application/toml or text/markdown. A YAML
// body may hold several documents. The response reports the 1-based numbers
// of the documents that failed:
//
//	{"schema": "service", "checked": 2, "valid": false, "failed": [2]}
//
// Status codes: 200 when every document matches, 422 when any does not,
// 400 for an undecodable body, 404 for an unknown schema, 413 for a body
// larger than fileutil.MaxFileSize and 415 for an unsupported media type.
package server
