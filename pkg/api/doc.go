// Package api serves the most recently built documentation site over HTTP.
//
// # Routes
//
//	GET /docs/               index page in the site format
//	GET /docs/{kind}/{page}  entity page; .md or .html names, ?format=html
//	GET /search              JSON search: q, kind, min_access, limit
//	GET /entries             docset lookup entries as JSON
//	GET /health/live         liveness probe
//	GET /health/ready        readiness probe, 503 until the first build
//	GET /metrics             Prometheus metrics
//
// Every documentation route answers 503 until the builder has produced a
// site. A failed rebuild leaves the previous site in place.
//
// # Usage Example
//
//	server := api.NewServer(builder, health, metrics, registry, logger)
//	srv := &http.Server{Addr: ":8080", Handler: server.Handler()}
//	log.Fatal(srv.ListenAndServe())
package api
