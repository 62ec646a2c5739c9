package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/sourcedocs/pkg/observability"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "index.md", want: "index.md"},
		{in: "classes/Foo.md", want: "classes/Foo.md"},
		{in: "classes/./Foo.md", want: "classes/Foo.md"},
		{in: `structs\Foo-Bar.md`, want: "structs/Foo-Bar.md"},
		{in: "a/../b.md", want: "b.md"},
		{in: "", wantErr: true},
		{in: "/etc/passwd", wantErr: true},
		{in: "../outside.md", wantErr: true},
		{in: "a/../../outside.md", wantErr: true},
		{in: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanPath(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileSystemSink_Put(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	root := filepath.Join(t.TempDir(), "site")

	sink, err := NewFileSystemSink(root, metrics)
	require.NoError(t, err)
	assert.DirExists(t, root)

	require.NoError(t, sink.Put(ctx, "classes/Foo.md", []byte("# Foo\n"), "text/markdown"))
	require.NoError(t, sink.Put(ctx, "classes/Foo.md", []byte("# Foo v2\n"), "text/markdown"))

	data, err := os.ReadFile(filepath.Join(root, "classes", "Foo.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Foo v2\n", string(data))

	leftovers, err := filepath.Glob(filepath.Join(root, "classes", ".page-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	err = sink.Put(ctx, "../escape.md", []byte("x"), "text/markdown")
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(root), "escape.md"))

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.SinkOperationsTotal.WithLabelValues("filesystem", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SinkOperationsTotal.WithLabelValues("filesystem", "error")))
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  []string
	putErr  error
	headErr error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(params.Body)
	f.puts = append(f.puts, params)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestS3Sink_Put(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{}
	sink := NewS3SinkWithClient(client, "docs-bucket", "v1", nil)

	require.NoError(t, sink.Put(ctx, "classes/Foo.html", []byte("<h1>Foo</h1>"), "text/html; charset=utf-8"))
	require.Len(t, client.puts, 1)

	put := client.puts[0]
	assert.Equal(t, "docs-bucket", aws.ToString(put.Bucket))
	assert.Equal(t, "v1/classes/Foo.html", aws.ToString(put.Key))
	assert.Equal(t, "text/html; charset=utf-8", aws.ToString(put.ContentType))
	assert.Len(t, put.Metadata["checksum-sha256"], 64)
	assert.Equal(t, "<h1>Foo</h1>", client.bodies[0])

	assert.ErrorIs(t, sink.Put(ctx, "/abs.html", nil, "text/html"), ErrInvalidPath)
	assert.Len(t, client.puts, 1)
}

func TestS3Sink_Errors(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{putErr: errors.New("access denied"), headErr: errors.New("no such bucket")}
	sink := NewS3SinkWithClient(client, "docs-bucket", "", nil)

	assert.ErrorContains(t, sink.Put(ctx, "index.md", []byte("x"), "text/markdown"), "access denied")
	assert.ErrorContains(t, sink.HealthCheck(ctx), "no such bucket")

	_, err := NewS3Sink(ctx, Config{Type: "s3"}, nil)
	assert.Error(t, err, "bucket is required")
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	sink, err := New(ctx, Config{FilesystemRoot: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileSystemSink{}, sink)

	_, err = New(ctx, Config{Type: "ftp"}, nil)
	assert.Error(t, err)
}
