package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Service struct {
	URL string `yaml:"url"`
}
type Services struct {
	ASR Service `yaml:"asr"`
}
type Audio struct {
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	Format     string `yaml:"format"`
}
type Download struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
	MaxBytes       int64  `yaml:"max_bytes"` // 0 = unlimited
}
type Extractor struct {
	Command string `yaml:"command"`
}
type Server struct {
	Bind               string `yaml:"bind"`
	MaxUploadMiB       int    `yaml:"max_upload_mib"`
	// multipart parts above this size spill to temp files
	MultipartMemoryMiB int    `yaml:"multipart_memory_mib"`
}
type Root struct {
	Pipeline struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		LogLvl  string `yaml:"log_level"`
	} `yaml:"pipeline"`
	Audio     Audio     `yaml:"audio"`
	Services  Services  `yaml:"services"`
	Download  Download  `yaml:"download"`
	Extractor Extractor `yaml:"extractor"`
	Server    Server    `yaml:"server"`
	Paths     struct {
		Scratch string `yaml:"scratch"`
		Outputs string `yaml:"outputs"`
	} `yaml:"paths"`
}

func Default() *Root {
	var c Root
	c.Pipeline.Name = "accent-detection"
	c.Pipeline.Version = "0.1.0"
	c.Pipeline.LogLvl = "info"
	c.Audio = Audio{SampleRate: 16000, Channels: 1, Format: "wav"}
	c.Services.ASR.URL = "http://localhost:8001"
	c.Download = Download{TimeoutSeconds: 60, UserAgent: "Mozilla/5.0"}
	c.Extractor.Command = "ffmpeg -hide_banner -loglevel error -y"
	c.Server = Server{Bind: ":8080", MaxUploadMiB: 200, MultipartMemoryMiB: 8}
	return &c
}

// Load reads the YAML file at path, or the first candidate found for
// CONFIG_ENV when path is empty, on top of Default. Values set in v (env
// vars, bound flags) win over the file. v may be nil.
func Load(path string, v *viper.Viper) (*Root, error) {
	cfg := Default()

	if path == "" {
		path = locate()
	}
	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("decode config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("open config %s: %w", path, err)
		}
	}

	if v == nil {
		v = NewViper()
	}
	cfg.overlay(v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func locate() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	guess := []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
	for _, p := range guess {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// NewViper returns a viper instance reading ACCENT_* env vars, e.g.
// ACCENT_SERVICES_ASR_URL for services.asr.url.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("ACCENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Keys understood by the overlay, usable with viper.BindPFlag.
const (
	KeyLogLevel        = "pipeline.log_level"
	KeyASRURL          = "services.asr.url"
	KeySampleRate      = "audio.sample_rate"
	KeyChannels        = "audio.channels"
	KeyDownloadTimeout = "download.timeout_seconds"
	KeyUserAgent       = "download.user_agent"
	KeyMaxBytes        = "download.max_bytes"
	KeyExtractor       = "extractor.command"
	KeyBind            = "server.bind"
	KeyMaxUploadMiB    = "server.max_upload_mib"
	KeyMultipartMiB    = "server.multipart_memory_mib"
	KeyScratch         = "paths.scratch"
	KeyOutputs         = "paths.outputs"
)

func (c *Root) overlay(v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	str(KeyLogLevel, &c.Pipeline.LogLvl)
	str(KeyASRURL, &c.Services.ASR.URL)
	num(KeySampleRate, &c.Audio.SampleRate)
	num(KeyChannels, &c.Audio.Channels)
	num(KeyDownloadTimeout, &c.Download.TimeoutSeconds)
	str(KeyUserAgent, &c.Download.UserAgent)
	if v.IsSet(KeyMaxBytes) {
		c.Download.MaxBytes = v.GetInt64(KeyMaxBytes)
	}
	str(KeyExtractor, &c.Extractor.Command)
	str(KeyBind, &c.Server.Bind)
	num(KeyMaxUploadMiB, &c.Server.MaxUploadMiB)
	num(KeyMultipartMiB, &c.Server.MultipartMemoryMiB)
	str(KeyScratch, &c.Paths.Scratch)
	str(KeyOutputs, &c.Paths.Outputs)
}

func (c *Root) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels <= 0 {
		return fmt.Errorf("audio.channels must be positive, got %d", c.Audio.Channels)
	}
	if c.Audio.Format != "wav" {
		return fmt.Errorf("audio.format must be wav, got %q", c.Audio.Format)
	}
	if strings.TrimSpace(c.Extractor.Command) == "" {
		return errors.New("extractor.command is empty")
	}
	if c.Server.MaxUploadMiB < 0 || c.Server.MultipartMemoryMiB < 0 {
		return fmt.Errorf("server upload limits must not be negative, got %d/%d MiB",
			c.Server.MaxUploadMiB, c.Server.MultipartMemoryMiB)
	}
	if c.Download.MaxBytes < 0 {
		return fmt.Errorf("download.max_bytes must not be negative, got %d", c.Download.MaxBytes)
	}
	return nil
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
