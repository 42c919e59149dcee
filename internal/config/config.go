// Package config provides functionality for managing configuration options
// for the application using a config file, environment variables and
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is read when neither -c nor CONFIG names a file.
// A missing default file is not an error.
const DefaultConfigPath = "config.yaml"

// Options holds the configuration values for the application.
type Options struct {
	Server  ServerOptions  `yaml:"server"  json:"server"`
	Storage StorageOptions `yaml:"storage" json:"storage"`
	Admin   AdminOptions   `yaml:"admin"   json:"admin"`
	Mail    MailOptions    `yaml:"mail"    json:"mail"`
	Log     LogOptions     `yaml:"log"     json:"log"`

	// Config is the path of the config file that was requested.
	Config string `yaml:"-" json:"-"`
}

// ServerOptions holds HTTP server settings.
type ServerOptions struct {
	// Address is the listening address (ip:port).
	Address string `yaml:"address" json:"address" env:"SERVER_ADDRESS"`
	// Port is used as ":PORT" when Address is not set (hosting platforms set PORT).
	Port            string        `yaml:"port"             json:"port"             env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     json:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    json:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"        env-default:"10s"`
	// TLSCertFile and TLSKeyFile switch the server to HTTPS when both are set.
	TLSCertFile string `yaml:"tls_cert_file" json:"tls_cert_file" env:"TLS_CERT_FILE"`
	TLSKeyFile  string `yaml:"tls_key_file"  json:"tls_key_file"  env:"TLS_KEY_FILE"`
}

// TLSEnabled reports whether HTTPS is configured.
func (s ServerOptions) TLSEnabled() bool {
	return s.TLSCertFile != "" && s.TLSKeyFile != ""
}

// StorageOptions holds on-disk locations.
type StorageOptions struct {
	PublicDir        string `yaml:"public_dir"         json:"public_dir"         env:"PUBLIC_DIR"         env-default:"public"`
	DataDir          string `yaml:"data_dir"           json:"data_dir"           env:"DATA_DIR"           env-default:"data"`
	UploadsDir       string `yaml:"uploads_dir"        json:"uploads_dir"        env:"UPLOADS_DIR"        env-default:"public/uploads"`
	UploadsURLPrefix string `yaml:"uploads_url_prefix" json:"uploads_url_prefix" env:"UPLOADS_URL_PREFIX" env-default:"/uploads"`
	UploadMaxBytes   int64  `yaml:"upload_max_bytes"   json:"upload_max_bytes"   env:"UPLOAD_MAX_BYTES"   env-default:"10485760"`
}

// AdminOptions holds admin authentication settings.
type AdminOptions struct {
	// Password is checked at login time; an empty value disables login.
	Password      string        `yaml:"password"       json:"password"       env:"ADMIN_PASSWORD"`
	SessionTTL    time.Duration `yaml:"session_ttl"    json:"session_ttl"    env:"SESSION_TTL"            env-default:"12h"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" env-default:"10m"`
}

// MailOptions holds email transport settings. Secrets are checked when a
// message is sent, not at startup.
type MailOptions struct {
	// Transport is "resend" or "smtp".
	Transport     string        `yaml:"transport"       json:"transport"       env:"MAIL_TRANSPORT"  env-default:"resend"`
	AdminEmail    string        `yaml:"admin_email"     json:"admin_email"     env:"ADMIN_EMAIL"`
	From          string        `yaml:"from"            json:"from"            env:"MAIL_FROM"`
	ResendAPIKey  string        `yaml:"resend_api_key"  json:"resend_api_key"  env:"RESEND_API_KEY"`
	ResendBaseURL string        `yaml:"resend_base_url" json:"resend_base_url" env:"RESEND_BASE_URL" env-default:"https://api.resend.com"`
	SMTPHost      string        `yaml:"smtp_host"       json:"smtp_host"       env:"SMTP_HOST"`
	SMTPPort      int           `yaml:"smtp_port"       json:"smtp_port"       env:"SMTP_PORT"       env-default:"587"`
	SMTPUser      string        `yaml:"smtp_user"       json:"smtp_user"       env:"SMTP_USER"`
	SMTPPass      string        `yaml:"smtp_pass"       json:"smtp_pass"       env:"SMTP_PASS"`
	Timeout       time.Duration `yaml:"timeout"         json:"timeout"         env:"MAIL_TIMEOUT"    env-default:"20s"`
}

// LogOptions holds logging settings.
type LogOptions struct {
	Level string `yaml:"level" json:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load builds Options from, in increasing priority: defaults, the config
// file, environment variables and the command-line flags in args.
//
// Flags:
//
//	-a        listening address (ip:port)
//	-c        path to config file (shorthand of -config)
//	-config   path to config file
func Load(args []string) (*Options, error) {
	fs := flag.NewFlagSet("bizcard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var addr, configPath string
	fs.StringVar(&addr, "a", "", "run on ip:port server")
	fs.StringVar(&configPath, "config", "", "path to config file")
	fs.StringVar(&configPath, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parse flags: %w", err)
	}

	// CONFIG env overrides the -c flag.
	if env := os.Getenv("CONFIG"); env != "" {
		configPath = env
	}
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}

	var opts Options
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &opts); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", configPath, err)
	} else if err := cleanenv.ReadEnv(&opts); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	opts.Config = configPath

	if addr != "" {
		opts.Server.Address = addr
	}
	if opts.Server.Address == "" {
		if opts.Server.Port != "" {
			opts.Server.Address = ":" + opts.Server.Port
		} else {
			opts.Server.Address = "localhost:8080"
		}
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &opts, nil
}

// Parse loads Options from os.Args and exits the process on failure.
func Parse() *Options {
	opts, err := Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

// Validate checks settings that would make the server misbehave. Missing
// secrets are not reported here.
func (o *Options) Validate() error {
	var errs []error

	o.Mail.Transport = strings.ToLower(strings.TrimSpace(o.Mail.Transport))
	switch o.Mail.Transport {
	case "resend", "smtp":
	default:
		errs = append(errs, fmt.Errorf("mail.transport must be resend or smtp (got %q)", o.Mail.Transport))
	}
	if (o.Server.TLSCertFile == "") != (o.Server.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.tls_cert_file and server.tls_key_file must be set together"))
	}
	if o.Storage.UploadMaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("storage.upload_max_bytes must be > 0 (got %d)", o.Storage.UploadMaxBytes))
	}
	if o.Admin.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("admin.session_ttl must be > 0 (got %s)", o.Admin.SessionTTL))
	}
	if o.Mail.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("mail.timeout must be > 0 (got %s)", o.Mail.Timeout))
	}
	if !strings.HasPrefix(o.Storage.UploadsURLPrefix, "/") {
		errs = append(errs, fmt.Errorf("storage.uploads_url_prefix must start with / (got %q)", o.Storage.UploadsURLPrefix))
	}

	return errors.Join(errs...)
}
