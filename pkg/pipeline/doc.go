// Package pipeline orchestrates documentation builds.
//
// A Builder loads the parser payload, ingests and merges entities into the
// store, renders a Site and publishes every page to a storage.Sink and the
// packaging entries to a docset index. Builds are serialised by a mutex and
// the finished Site is swapped in atomically, so readers such as the HTTP
// server always see a complete build.
//
// Watcher triggers builds from filesystem events on the payload (debounced),
// Scheduler triggers them from a cron expression. Both only log failures;
// the previous Site stays live.
package pipeline
