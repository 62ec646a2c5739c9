// Package storage publishes rendered documentation pages.
//
// A Sink accepts one page at a time. FileSystemSink writes below a local
// directory, replacing files atomically. S3Sink uploads to an S3-compatible
// bucket (AWS, MinIO) with a SHA-256 checksum in the object metadata.
//
// Paths are slash-separated and relative to the output root. CleanPath
// rejects absolute paths and paths that climb out of the root with
// ErrInvalidPath before any backend is touched.
//
//	sink, err := storage.New(ctx, storage.Config{
//		Type:           "filesystem",
//		FilesystemRoot: "build/docs",
//	}, metrics)
//	if err != nil {
//		return err
//	}
//	err = sink.Put(ctx, "classes/Foo.md", content, "text/markdown; charset=utf-8")
package storage
