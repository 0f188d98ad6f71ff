package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    *ObjectURI
		wantErr error
	}{
		{
			name: "bucket only",
			uri:  "s3://my-bucket",
			want: &ObjectURI{Backend: "s3", Bucket: "my-bucket"},
		},
		{
			name: "bucket root",
			uri:  "s3://my-bucket/",
			want: &ObjectURI{Backend: "s3", Bucket: "my-bucket"},
		},
		{
			name: "key",
			uri:  "s3://my-bucket/path/to/file.txt",
			want: &ObjectURI{Backend: "s3", Bucket: "my-bucket", Key: "path/to/file.txt"},
		},
		{
			name: "prefix",
			uri:  "s3://my-bucket/tmp/test/",
			want: &ObjectURI{Backend: "s3", Bucket: "my-bucket", Key: "tmp/test/"},
		},
		{
			name: "uppercase scheme",
			uri:  "S3://my-bucket/key",
			want: &ObjectURI{Backend: "s3", Bucket: "my-bucket", Key: "key"},
		},
		{
			name:    "empty",
			uri:     "",
			wantErr: ErrInvalidURI,
		},
		{
			name:    "missing scheme",
			uri:     "my-bucket/key",
			wantErr: ErrInvalidURI,
		},
		{
			name:    "unsupported backend",
			uri:     "gs://my-bucket/key",
			wantErr: ErrUnsupportedBackend,
		},
		{
			name:    "missing bucket",
			uri:     "s3://",
			wantErr: ErrMissingBucket,
		},
		{
			name:    "empty bucket with key",
			uri:     "s3:///key",
			wantErr: ErrMissingBucket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.uri)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectURI_String(t *testing.T) {
	u := &ObjectURI{Backend: "s3", Bucket: "bucket", Key: "tmp/file1"}
	assert.Equal(t, "s3://bucket/tmp/file1", u.String())

	root := &ObjectURI{Backend: "s3", Bucket: "bucket"}
	assert.Equal(t, "s3://bucket/", root.String())
}

func TestObjectURI_IsPrefix(t *testing.T) {
	assert.True(t, (&ObjectURI{Key: ""}).IsPrefix())
	assert.True(t, (&ObjectURI{Key: "tmp/"}).IsPrefix())
	assert.False(t, (&ObjectURI{Key: "tmp/file1"}).IsPrefix())
}
