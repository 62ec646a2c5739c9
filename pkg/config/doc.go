// Package config loads sourcedocs configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// SOURCEDOCS_* environment variables. The result is validated before it is
// returned.
//
// # Example File
//
//	project:
//	  root: .
//	  payload: build/sourcekitten.json
//	build:
//	  title: MyKit
//	  layout: multi-page
//	  format: markdown
//	  min_access: public
//	output:
//	  sink: filesystem
//	  directory: docs
//	  docset: build/docSet.dsidx
//	cache:
//	  enabled: true
//	  redis_url: redis://localhost:6379/0
//	watch:
//	  enabled: true
//	  schedule: "@hourly"
//
// # Environment Variables
//
//   - SOURCEDOCS_CONFIG: YAML file path
//   - SOURCEDOCS_PAYLOAD, SOURCEDOCS_PROJECT_ROOT
//   - SOURCEDOCS_LAYOUT, SOURCEDOCS_FORMAT, SOURCEDOCS_MIN_ACCESS, SOURCEDOCS_TITLE
//   - SOURCEDOCS_SINK, SOURCEDOCS_OUTPUT_DIR, SOURCEDOCS_DOCSET, SOURCEDOCS_S3_*
//   - SOURCEDOCS_CACHE_ENABLED, SOURCEDOCS_CACHE_SIZE, SOURCEDOCS_REDIS_URL
//   - SOURCEDOCS_HOST, SOURCEDOCS_PORT, SOURCEDOCS_*_TIMEOUT
//   - SOURCEDOCS_WATCH, SOURCEDOCS_WATCH_DEBOUNCE, SOURCEDOCS_SCHEDULE
//   - SOURCEDOCS_LOG_LEVEL, SOURCEDOCS_METRICS_ENABLED, SOURCEDOCS_OTEL_*
package config
