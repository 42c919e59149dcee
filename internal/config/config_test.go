package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory so no stray config.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG", "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	opts, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", opts.Server.Address)
	assert.Equal(t, "data", opts.Storage.DataDir)
	assert.Equal(t, "public/uploads", opts.Storage.UploadsDir)
	assert.Equal(t, "/uploads", opts.Storage.UploadsURLPrefix)
	assert.Equal(t, int64(10<<20), opts.Storage.UploadMaxBytes)
	assert.Equal(t, 12*time.Hour, opts.Admin.SessionTTL)
	assert.Equal(t, "resend", opts.Mail.Transport)
	assert.Equal(t, 20*time.Second, opts.Mail.Timeout)
	assert.Equal(t, 587, opts.Mail.SMTPPort)
	assert.Equal(t, "info", opts.Log.Level)
	assert.Empty(t, opts.Admin.Password)
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "3000")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("MAIL_TRANSPORT", "SMTP")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SESSION_TTL", "30m")

	opts, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":3000", opts.Server.Address)
	assert.Equal(t, "hunter2", opts.Admin.Password)
	assert.Equal(t, "smtp", opts.Mail.Transport)
	assert.Equal(t, "smtp.example.com", opts.Mail.SMTPHost)
	assert.Equal(t, 30*time.Minute, opts.Admin.SessionTTL)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_ADDRESS", "0.0.0.0:9000")

	opts, err := Load([]string{"-a", "127.0.0.1:7000"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", opts.Server.Address)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":8181"
admin:
  password: from-file
mail:
  admin_email: admin@example.com
  timeout: 5s
`), 0o644))
	t.Setenv("MAIL_FROM", "cards@example.com")

	opts, err := Load([]string{"-c", path})
	require.NoError(t, err)

	assert.Equal(t, path, opts.Config)
	assert.Equal(t, ":8181", opts.Server.Address)
	assert.Equal(t, "from-file", opts.Admin.Password)
	assert.Equal(t, "admin@example.com", opts.Mail.AdminEmail)
	assert.Equal(t, "cards@example.com", opts.Mail.From)
	assert.Equal(t, 5*time.Second, opts.Mail.Timeout)
	assert.Equal(t, "data", opts.Storage.DataDir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load([]string{"-config", "nope.yaml"})
	assert.ErrorContains(t, err, "nope.yaml")
}

func TestLoad_BadFlag(t *testing.T) {
	isolate(t)
	_, err := Load([]string{"-unknown"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Options {
		return Options{
			Storage: StorageOptions{UploadMaxBytes: 1, UploadsURLPrefix: "/uploads"},
			Admin:   AdminOptions{SessionTTL: time.Hour},
			Mail:    MailOptions{Transport: "resend", Timeout: time.Second},
		}
	}

	o := valid()
	require.NoError(t, o.Validate())

	tests := []struct {
		name   string
		mutate func(*Options)
		want   string
	}{
		{"unknown transport", func(o *Options) { o.Mail.Transport = "pigeon" }, "mail.transport"},
		{"zero upload limit", func(o *Options) { o.Storage.UploadMaxBytes = 0 }, "upload_max_bytes"},
		{"zero ttl", func(o *Options) { o.Admin.SessionTTL = 0 }, "session_ttl"},
		{"zero mail timeout", func(o *Options) { o.Mail.Timeout = 0 }, "mail.timeout"},
		{"tls cert without key", func(o *Options) { o.Server.TLSCertFile = "certs/server.crt" }, "tls_cert_file"},
		{"relative uploads prefix", func(o *Options) { o.Storage.UploadsURLPrefix = "uploads" }, "uploads_url_prefix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid()
			tt.mutate(&o)
			assert.ErrorContains(t, o.Validate(), tt.want)
		})
	}
}

func TestServerOptions_TLSEnabled(t *testing.T) {
	assert.False(t, ServerOptions{}.TLSEnabled())
	assert.False(t, ServerOptions{TLSCertFile: "a.crt"}.TLSEnabled())
	assert.True(t, ServerOptions{TLSCertFile: "a.crt", TLSKeyFile: "a.key"}.TLSEnabled())
}
