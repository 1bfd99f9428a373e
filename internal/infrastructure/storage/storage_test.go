package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"i contain cool ümläuts.txt", "i_contain_cool_umlauts.txt"},
		{"  spaced\tout  name.png ", "spaced_out_name.png"},
		{"photo (1).jpg", "photo_1.jpg"},
		{"._hidden.gif", "hidden.gif"},
		{"...", ""},
		{"日本.png", "png"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestAllowedFile(t *testing.T) {
	for _, name := range []string{"a.png", "a.JPG", "b.tar.mp4", "voice.m4a", "x.Wav"} {
		assert.True(t, AllowedFile(name), name)
	}
	for _, name := range []string{"a.exe", "png", "a.", "", "a.png.txt"} {
		assert.False(t, AllowedFile(name), name)
	}
}

func TestPublicPath(t *testing.T) {
	assert.Equal(t, "/uploads/beach.jpg", PublicPath("beach.jpg"))
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create the directory and round-trip a file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "uploads")
		s, err := NewLocalStore(dir, nil)
		require.NoError(t, err)
		assert.DirExists(t, dir)

		require.NoError(t, s.Save(ctx, "beach.jpg", strings.NewReader("jpeg-bytes")))

		rc, err := s.Open(ctx, "beach.jpg")
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes", string(body))
	})

	t.Run("Should overwrite a file with the same name", func(t *testing.T) {
		s, err := NewLocalStore(t.TempDir(), nil)
		require.NoError(t, err)

		require.NoError(t, s.Save(ctx, "a.png", strings.NewReader("old")))
		require.NoError(t, s.Save(ctx, "a.png", strings.NewReader("new")))

		data, err := os.ReadFile(filepath.Join(s.Dir(), "a.png"))
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("Should not escape the directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("x"), 0o600))
		s, err := NewLocalStore(filepath.Join(root, "uploads"), nil)
		require.NoError(t, err)

		for _, name := range []string{"../secret.txt", "..", ".", "", "a/b.png"} {
			_, err := s.Open(ctx, name)
			assert.ErrorIs(t, err, ErrNotFound, name)
		}
		assert.Error(t, s.Save(ctx, "../evil.png", strings.NewReader("x")))
	})

	t.Run("Should report missing files", func(t *testing.T) {
		s, err := NewLocalStore(t.TempDir(), nil)
		require.NoError(t, err)

		_, err = s.Open(ctx, "missing.png")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()

	t.Run("Should write under the prefix and read back", func(t *testing.T) {
		fake := &fakeS3{objects: map[string][]byte{}}
		s := newS3Store(fake, "bucket", "memories", nil)

		require.NoError(t, s.Save(ctx, "clip.mp4", strings.NewReader("video")))
		assert.Contains(t, fake.objects, "bucket/memories/clip.mp4")

		rc, err := s.Open(ctx, "clip.mp4")
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "video", string(body))
	})

	t.Run("Should map a missing key to ErrNotFound", func(t *testing.T) {
		s := newS3Store(&fakeS3{objects: map[string][]byte{}}, "bucket", "", nil)

		_, err := s.Open(ctx, "nope.png")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.Open(ctx, "../nope.png")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Should wrap upload failures", func(t *testing.T) {
		boom := errors.New("boom")
		s := newS3Store(&fakeS3{objects: map[string][]byte{}, putErr: boom}, "bucket", "", nil)

		err := s.Save(ctx, "a.png", strings.NewReader("x"))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Should require a bucket", func(t *testing.T) {
		_, err := NewS3Store(ctx, S3Config{}, nil)
		assert.Error(t, err)
	})
}
