package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

func writeS3Cfg(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".s3cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestImportS3Cfg(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		provider  storage.Provider
		endpoint  string
		region    string
		pathStyle bool
	}{
		{
			name:     "aws",
			content:  "[default]\naccess_key = AK\nsecret_key = SK\nbucket_location = eu-west-1\n",
			provider: storage.ProviderS3,
			region:   "eu-west-1",
		},
		{
			name:     "r2",
			content:  "[default]\naccess_key = AK\nsecret_key = SK\nhost_base = acct.r2.cloudflarestorage.com\n",
			provider: storage.ProviderR2,
			endpoint: "https://acct.r2.cloudflarestorage.com",
			region:   "us-east-1",
		},
		{
			name:      "self hosted over http",
			content:   "[default]\naccess_key = AK\nsecret_key = SK\nhost_base = minio.lan:9000\nhost_bucket = minio.lan:9000\nuse_https = False\n",
			provider:  storage.ProviderCustom,
			endpoint:  "http://minio.lan:9000",
			region:    "us-east-1",
			pathStyle: true,
		},
		{
			name:     "virtual hosted custom",
			content:  "[default]\naccess_key = AK\nsecret_key = SK\nhost_base = s3.example.com\nhost_bucket = %(bucket)s.s3.example.com\n",
			provider: storage.ProviderCustom,
			endpoint: "https://s3.example.com",
			region:   "us-east-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := ImportS3Cfg(writeS3Cfg(t, tt.content), "imported")
			require.NoError(t, err)
			assert.Equal(t, "imported", conn.ID)
			assert.Equal(t, "AK", conn.AccessKeyID)
			assert.Equal(t, "SK", conn.SecretAccessKey)
			assert.Equal(t, tt.provider, conn.Provider)
			assert.Equal(t, tt.endpoint, conn.Endpoint)
			assert.Equal(t, tt.region, conn.Region)
			assert.Equal(t, tt.pathStyle, conn.ForcePathStyle)
		})
	}
}

func TestImportS3CfgRequiresKeys(t *testing.T) {
	_, err := ImportS3Cfg(writeS3Cfg(t, "[default]\naccess_key = AK\n"), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret_key")
}

func TestAppendConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	first := &ConnectionConfig{ID: "one", Provider: storage.ProviderS3, AccessKeyID: "a", SecretAccessKey: "b", Region: "us-east-1"}
	require.NoError(t, AppendConnection(path, first))

	second := &ConnectionConfig{
		ID: "two", Provider: storage.ProviderMinIO, AccessKeyID: "c", SecretAccessKey: "d",
		Endpoint: "http://localhost:9000", Region: "us-east-1", ForcePathStyle: true,
	}
	require.NoError(t, AppendConnection(path, second))

	err := AppendConnection(path, first)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Connections, 2)
	assert.Equal(t, "one", cfg.Connections[0].ID)
	assert.Equal(t, "http://localhost:9000", cfg.Connections[1].Endpoint)
	assert.True(t, cfg.Connections[1].ForcePathStyle)
}
