package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// OutputFormat selects how extracted content is rendered into artifacts.
type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatMarkdown OutputFormat = "markdown"
)

// DefaultSkipExtensions mirrors the conventional non-HTML asset list:
// anything ending in one of these never enters the frontier.
var DefaultSkipExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg",
	".ico", ".pdf", ".zip", ".rar", ".7z", ".mp3", ".mp4",
	".avi", ".mov", ".wmv", ".ogg", ".webm", ".json",
	".txt", ".csv", ".js", ".css", ".woff", ".woff2", ".ttf",
}

// DefaultSelectors is the ordered extraction policy used when no selectors
// are configured: theme content containers first, then the main landmark.
var DefaultSelectors = []string{"#primary", ".entry-content", "main"}

type Config struct {
	//===============
	//  Crawl scope
	//===============
	// Path to the line-oriented seed list file. Either this or seedURLs
	// must be provided.
	seedFile string
	// Seeds given directly (CLI), used in addition to the seed file.
	seedURLs []string

	//===============
	// Limits
	//===============
	// Maximum number of frontier entries fetched in a run. 0 = unlimited.
	maxURLs int
	// URLs whose path ends with one of these extensions never enter the frontier.
	skipExtensions []string

	//===============
	// Politeness
	//===============
	// Maximum number of crawl worker goroutines processing URLs concurrently;
	// it does not control OS threads or CPU parallelism.
	concurrency int
	// Minimum waiting time enforced between two request dispatches.
	delay time.Duration
	// Randomized variation added on top of the delay for same-host pacing.
	jitter time.Duration
	// Controls the random number generator used for jitter.
	randomSeed int64
	// Whether to fetch and honor robots.txt per host.
	respectRobots bool

	//===============
	// Fetch
	//===============
	// Maximum duration of a single fetch request.
	timeout time.Duration
	// User agent used in the request header.
	userAgent string

	//===============
	// Extraction
	//===============
	// Ordered CSS selector expressions; first match wins, with
	// full-document fallback when none match.
	selectors []string

	//===============
	// Output
	//===============
	// Root directory in which to store the resulting artifacts.
	outputDir string
	// Render artifacts as collapsed text or converted markdown.
	format OutputFormat
	// Whether the active domain's directory is wiped once before the run.
	cleanBeforeRun bool
	// Whether each artifact starts with a header block (URL, title, selector).
	includeHeader bool
	// Append a short URL hash to filenames to avoid path collisions.
	hashSuffix bool
	// When non-empty, every frontier URL is written here, one per line.
	linksFile string
}

type configDTO struct {
	SeedFile       string        `json:"seedFile,omitempty"`
	SeedURLs       []string      `json:"seedUrls,omitempty"`
	MaxURLs        int           `json:"maxUrls,omitempty"`
	SkipExtensions []string      `json:"skipExtensions,omitempty"`
	Concurrency    int           `json:"concurrency,omitempty"`
	Delay          time.Duration `json:"delay,omitempty"`
	Jitter         time.Duration `json:"jitter,omitempty"`
	RandomSeed     int64         `json:"randomSeed,omitempty"`
	RespectRobots  bool          `json:"respectRobots,omitempty"`
	Timeout        time.Duration `json:"timeout,omitempty"`
	UserAgent      string        `json:"userAgent,omitempty"`
	Selectors      []string      `json:"selectors,omitempty"`
	OutputDir      string        `json:"outputDir,omitempty"`
	Format         string        `json:"format,omitempty"`
	CleanBeforeRun *bool         `json:"cleanBeforeRun,omitempty"`
	IncludeHeader  *bool         `json:"includeHeader,omitempty"`
	HashSuffix     bool          `json:"hashSuffix,omitempty"`
	LinksFile      string        `json:"linksFile,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	builder := WithDefault()

	if dto.SeedFile != "" {
		builder = builder.WithSeedFile(dto.SeedFile)
	}
	if len(dto.SeedURLs) > 0 {
		builder = builder.WithSeedURLs(dto.SeedURLs)
	}
	if dto.MaxURLs != 0 {
		builder = builder.WithMaxURLs(dto.MaxURLs)
	}
	if len(dto.SkipExtensions) > 0 {
		builder = builder.WithSkipExtensions(dto.SkipExtensions)
	}
	if dto.Concurrency != 0 {
		builder = builder.WithConcurrency(dto.Concurrency)
	}
	if dto.Delay != 0 {
		builder = builder.WithDelay(dto.Delay)
	}
	if dto.Jitter != 0 {
		builder = builder.WithJitter(dto.Jitter)
	}
	if dto.RandomSeed != 0 {
		builder = builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.RespectRobots {
		builder = builder.WithRespectRobots(true)
	}
	if dto.Timeout != 0 {
		builder = builder.WithTimeout(dto.Timeout)
	}
	if dto.UserAgent != "" {
		builder = builder.WithUserAgent(dto.UserAgent)
	}
	if len(dto.Selectors) > 0 {
		builder = builder.WithSelectors(dto.Selectors)
	}
	if dto.OutputDir != "" {
		builder = builder.WithOutputDir(dto.OutputDir)
	}
	if dto.Format != "" {
		builder = builder.WithFormat(OutputFormat(dto.Format))
	}
	// booleans with meaningful false need pointer DTO fields
	if dto.CleanBeforeRun != nil {
		builder = builder.WithCleanBeforeRun(*dto.CleanBeforeRun)
	}
	if dto.IncludeHeader != nil {
		builder = builder.WithIncludeHeader(*dto.IncludeHeader)
	}
	if dto.HashSuffix {
		builder = builder.WithHashSuffix(true)
	}
	if dto.LinksFile != "" {
		builder = builder.WithLinksFile(dto.LinksFile)
	}

	return builder.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	cfgDTO := configDTO{}
	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config builder with default values for all fields.
// Seed sources are mandatory and must be supplied before Build.
func WithDefault() *Config {
	defaultConfig := Config{
		seedFile:       "",
		seedURLs:       nil,
		maxURLs:        0,
		skipExtensions: DefaultSkipExtensions,
		concurrency:    1,
		delay:          500 * time.Millisecond,
		jitter:         0,
		randomSeed:     time.Now().UnixNano(),
		respectRobots:  false,
		timeout:        15 * time.Second,
		userAgent:      "sitemap-crawler/1.0",
		selectors:      DefaultSelectors,
		outputDir:      "data",
		format:         FormatText,
		cleanBeforeRun: true,
		includeHeader:  true,
		hashSuffix:     false,
		linksFile:      "",
	}
	return &defaultConfig
}

func (c *Config) WithSeedFile(path string) *Config {
	c.seedFile = path
	return c
}

func (c *Config) WithSeedURLs(urls []string) *Config {
	c.seedURLs = urls
	return c
}

func (c *Config) WithMaxURLs(max int) *Config {
	c.maxURLs = max
	return c
}

func (c *Config) WithSkipExtensions(extensions []string) *Config {
	c.skipExtensions = extensions
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithDelay(delay time.Duration) *Config {
	c.delay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithRespectRobots(respect bool) *Config {
	c.respectRobots = respect
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithSelectors(selectors []string) *Config {
	c.selectors = selectors
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithFormat(format OutputFormat) *Config {
	c.format = format
	return c
}

func (c *Config) WithCleanBeforeRun(clean bool) *Config {
	c.cleanBeforeRun = clean
	return c
}

func (c *Config) WithIncludeHeader(include bool) *Config {
	c.includeHeader = include
	return c
}

func (c *Config) WithHashSuffix(hashSuffix bool) *Config {
	c.hashSuffix = hashSuffix
	return c
}

func (c *Config) WithLinksFile(path string) *Config {
	c.linksFile = path
	return c
}

func (c *Config) Build() (Config, error) {
	if c.seedFile == "" && len(c.seedURLs) == 0 {
		return Config{}, fmt.Errorf("%w: at least one seed source is required", ErrInvalidConfig)
	}
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be >= 1", ErrInvalidConfig)
	}
	if c.maxURLs < 0 {
		return Config{}, fmt.Errorf("%w: maxUrls must be >= 0 (0 means unlimited)", ErrInvalidConfig)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.format != FormatText && c.format != FormatMarkdown {
		return Config{}, fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.format)
	}
	return *c, nil
}

func (c Config) SeedFile() string {
	return c.seedFile
}

func (c Config) SeedURLs() []string {
	urls := make([]string, len(c.seedURLs))
	copy(urls, c.seedURLs)
	return urls
}

func (c Config) MaxURLs() int {
	return c.maxURLs
}

func (c Config) SkipExtensions() []string {
	extensions := make([]string, len(c.skipExtensions))
	copy(extensions, c.skipExtensions)
	return extensions
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) Delay() time.Duration {
	return c.delay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) RespectRobots() bool {
	return c.respectRobots
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) Selectors() []string {
	selectors := make([]string, len(c.selectors))
	copy(selectors, c.selectors)
	return selectors
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) Format() OutputFormat {
	return c.format
}

func (c Config) CleanBeforeRun() bool {
	return c.cleanBeforeRun
}

func (c Config) IncludeHeader() bool {
	return c.includeHeader
}

func (c Config) HashSuffix() bool {
	return c.hashSuffix
}

func (c Config) LinksFile() string {
	return c.linksFile
}
