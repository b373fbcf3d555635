package media

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func pngUpload() Upload {
	return Upload{Filename: "shot.png", Body: bytes.NewReader(pngHeader)}
}

func TestLocalStoreSaveAndRemove(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewLocalStore(root, 5<<20)

	p, err := store.Save(ctx, pngUpload())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, Prefix+"project_"))
	assert.True(t, strings.HasSuffix(p, ".png"))
	assert.Equal(t, "/"+p, store.URL(p))

	full := filepath.Join(root, filepath.FromSlash(p))
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, store.Remove(ctx, p))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(ctx, p), "removing a missing file is not an error")
}

func TestLocalStoreRejects(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir(), 16)

	_, err := store.Save(ctx, Upload{Body: strings.NewReader("just some text, not an image")})
	assert.ErrorIs(t, err, ErrTooLarge)

	store = NewLocalStore(t.TempDir(), 1<<20)
	_, err = store.Save(ctx, Upload{Body: strings.NewReader("plain text")})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save(ctx, Upload{Body: strings.NewReader("")})
	assert.ErrorIs(t, err, ErrEmpty)

	for _, p := range []string{"../etc/passwd", "uploads/projects/../../secret", "uploads/other/x.png", "uploads/projects/", "uploads/projects/a/b.png"} {
		assert.ErrorIs(t, store.Remove(ctx, p), ErrInvalidPath, p)
	}
}

func TestCleanPath(t *testing.T) {
	p, err := cleanPath("/uploads/projects/project_1.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/projects/project_1.png", p)
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	deletes []string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{}
	store := NewS3StoreWithClient(client, "portfolio", "https://cdn.example.com/", 5<<20)

	p, err := store.Save(ctx, pngUpload())
	require.NoError(t, err)
	require.Len(t, client.puts, 1)
	assert.Equal(t, p, aws.ToString(client.puts[0].Key))
	assert.Equal(t, "image/png", aws.ToString(client.puts[0].ContentType))
	assert.Equal(t, "https://cdn.example.com/"+p, store.URL(p))

	require.NoError(t, store.Remove(ctx, p))
	assert.Equal(t, []string{p}, client.deletes)

	assert.ErrorIs(t, store.Remove(ctx, "../x"), ErrInvalidPath)

	def := NewS3StoreWithClient(client, "bucket", "", 1)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/a", def.URL("a"))
}
