package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultContentSelector = "div.epcontent, div.chapter-content, article"

type Config struct {
	Output         string `yaml:"output"`
	ImageWorkers   int    `yaml:"image_workers"`
	ChapterWorkers int    `yaml:"chapter_workers"`
	KeepFolders    bool   `yaml:"keep_folders"`
	Debug          bool   `yaml:"debug"`

	Source              string `yaml:"source"`
	Lang                string `yaml:"lang"`
	ContentSelector     string `yaml:"content_selector"`
	ReadabilityFallback bool   `yaml:"readability_fallback"`
	PrefsBackend        string `yaml:"prefs_backend"`
	FontFile            string `yaml:"font_file"`

	Cookie            string  `yaml:"cookie"`
	CookieFile        string  `yaml:"cookie_file"`
	UserAgent         string  `yaml:"user_agent"`
	Cloudflare        bool    `yaml:"cloudflare"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	SkipBroken bool `yaml:"skip_broken"`
}

type Options struct {
	IgnoreConfig      bool
	Debug             bool
	Output            string
	KeepFolders       bool
	Source            string
	ContentSelector   string
	Cookie            string
	CookieFile        string
	UserAgent         string
	Cloudflare        bool
	RequestsPerSecond float64
	SkipBroken        bool
}

func DefaultConfig() *Config {
	return &Config{
		Output:              ".",
		ImageWorkers:        5,
		ChapterWorkers:      2,
		KeepFolders:         false,
		Debug:               false,
		Source:              "default",
		Lang:                LangEnglish,
		ContentSelector:     DefaultContentSelector,
		ReadabilityFallback: true,
		PrefsBackend:        BackendYAML,
		FontFile:            "",
		Cookie:              "",
		CookieFile:          "",
		UserAgent:           "",
		Cloudflare:          false,
		RequestsPerSecond:   0,
		SkipBroken:          false,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		cfg.PrefsBackend = BackendMemory
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `noveltomanga config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.KeepFolders {
		c.KeepFolders = true
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Source != "" {
		c.Source = o.Source
	}
	if o.ContentSelector != "" {
		c.ContentSelector = o.ContentSelector
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cloudflare {
		c.Cloudflare = true
	}
	if o.RequestsPerSecond > 0 {
		c.RequestsPerSecond = o.RequestsPerSecond
	}
	if o.SkipBroken {
		c.SkipBroken = true
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.ImageWorkers == 0 {
		c.ImageWorkers = 5
	}
	if c.ChapterWorkers == 0 {
		c.ChapterWorkers = 2
	}
	if c.Source == "" {
		c.Source = "default"
	}
	if c.Lang == "" {
		c.Lang = LangEnglish
	}
	if c.ContentSelector == "" {
		c.ContentSelector = DefaultContentSelector
	}
	if c.RequestsPerSecond < 0 {
		c.RequestsPerSecond = 0
	}
	if c.PrefsBackend == "" {
		c.PrefsBackend = BackendYAML
	}
}

func (c *Config) Print() {
	if c.Output != "" {
		fmt.Printf(" -output: %s\n", c.Output)
	}
	fmt.Printf(" -image_workers: %d\n", c.ImageWorkers)
	fmt.Printf(" -chapter_workers: %d\n", c.ChapterWorkers)
	if c.KeepFolders {
		fmt.Printf(" -keep_folders: %t\n", c.KeepFolders)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	fmt.Printf(" -source: %s\n", c.Source)
	fmt.Printf(" -lang: %s\n", c.Lang)
	fmt.Printf(" -content_selector: %s\n", c.ContentSelector)
	fmt.Printf(" -readability_fallback: %t\n", c.ReadabilityFallback)
	fmt.Printf(" -prefs_backend: %s\n", c.PrefsBackend)
	if c.FontFile != "" {
		fmt.Printf(" -font_file: %s\n", c.FontFile)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.Cloudflare {
		fmt.Printf(" -cloudflare: %t\n", c.Cloudflare)
	}
	if c.RequestsPerSecond > 0 {
		fmt.Printf(" -requests_per_second: %g\n", c.RequestsPerSecond)
	}
	if c.SkipBroken {
		fmt.Printf(" -skip_broken: %t\n", c.SkipBroken)
	}
}
