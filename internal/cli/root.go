package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/build"
	"github.com/rohmanhakim/sitemap-crawler/internal/config"
	"github.com/rohmanhakim/sitemap-crawler/internal/fetcher"
	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/scheduler"
	"github.com/rohmanhakim/sitemap-crawler/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	seedFile      string
	seedURLs      []string
	maxURLs       int
	skipExts      []string
	concurrency   int
	delay         time.Duration
	jitter        time.Duration
	randomSeed    int64
	respectRobots bool
	timeout       time.Duration
	userAgent     string
	selectors     string
	outputDir     string
	format        string
	noClean       bool
	noHeader      bool
	hashSuffix    bool
	linksFile     string
)

// parseSelectorList splits a comma-separated selector expression list,
// trimming whitespace and dropping empty segments.
func parseSelectorList(commaSeparated string) []string {
	var parsed []string
	for _, segment := range strings.Split(commaSeparated, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		parsed = append(parsed, segment)
	}
	return parsed
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "sitemap-crawler",
	Version: build.FullVersion(),
	Short:   "A sitemap-driven page crawler.",
	Long: `sitemap-crawler is a CLI application that expands sitemap and page
seeds into a bounded crawl frontier, fetches each page politely, extracts the
meaningful content via CSS selector rules, and stores one artifact per URL
grouped by domain.

The crawl is deterministic and repeatable: the same seeds and configuration
produce the same frontier and the same artifact paths.`,
	Run: func(cmd *cobra.Command, args []string) {
		if seedFile == "" && len(seedURLs) == 0 && cfgFile == "" {
			fmt.Fprintf(os.Stderr, "Error: a seed source is required. Provide --seed-file or at least one --seed-url.\n")
			cmd.Usage()
			os.Exit(1)
		}

		cfg := InitConfig()

		summary, err := runCrawl(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		fmt.Printf("Crawl finished in %v\n", summary.Duration().Round(time.Millisecond))
		fmt.Printf("  saved:   %d\n", summary.Successes())
		fmt.Printf("  skipped: %d\n", summary.Skips())
		fmt.Printf("  failed:  %d\n", summary.Failures())
		if summary.Failures() > 0 {
			os.Exit(1)
		}
	},
}

// runCrawl wires the production components and executes one crawl.
func runCrawl(ctx context.Context, cfg config.Config) (scheduler.Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	recorder := metadata.NewRecorder()
	httpFetcher := fetcher.NewHTTPFetcher(recorder, cfg.Timeout())
	mapper := storage.NewPathMapper(cfg.HashSuffix())
	sink := storage.NewLocalSink(recorder, cfg.OutputDir(), mapper)

	crawlScheduler := scheduler.New(cfg, recorder, recorder, &httpFetcher, sink)
	summary, crawlErr := crawlScheduler.Crawl(ctx)
	if crawlErr != nil {
		return scheduler.Summary{}, crawlErr
	}
	return summary, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed-file", "", "path to a line-oriented seed list (sitemaps and page URLs)")
	rootCmd.PersistentFlags().StringArrayVar(&seedURLs, "seed-url", []string{}, "one or more seed URLs (can be repeated)")
	rootCmd.PersistentFlags().IntVar(&maxURLs, "max-urls", 0, "maximum number of URLs to crawl (0 for unlimited)")
	rootCmd.PersistentFlags().StringArrayVar(&skipExts, "skip-ext", []string{}, "extension to exclude from the frontier (can be repeated; replaces the default list)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of concurrent crawl workers")
	rootCmd.PersistentFlags().DurationVar(&delay, "delay", 0, "minimum delay between request dispatches")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to the same-host delay")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().BoolVar(&respectRobots, "respect-robots", false, "fetch and honor robots.txt per host")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&selectors, "selectors", "", "comma-separated CSS selectors tried in order (first match wins)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "root output directory for crawled content")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "artifact body format: text or markdown")
	rootCmd.PersistentFlags().BoolVar(&noClean, "no-clean", false, "keep the active domain's existing output instead of wiping it")
	rootCmd.PersistentFlags().BoolVar(&noHeader, "no-header", false, "omit the URL/title/selector header block from artifacts")
	rootCmd.PersistentFlags().BoolVar(&hashSuffix, "hash-suffix", false, "append a short URL hash to artifact filenames")
	rootCmd.PersistentFlags().StringVar(&linksFile, "links-file", "", "write every frontier URL to this file, one per line")
}

// InitConfig builds the effective config from the config file or CLI flags.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError builds the effective config, returning any errors.
// This makes it easier to test error cases.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		fmt.Printf("Initializing config from file: %s\n", cfgFile)
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	// Start with defaults and apply overrides using method chaining
	configBuilder := config.WithDefault()

	if seedFile != "" {
		configBuilder = configBuilder.WithSeedFile(seedFile)
	}

	if len(seedURLs) > 0 {
		configBuilder = configBuilder.WithSeedURLs(seedURLs)
	}

	if maxURLs > 0 {
		configBuilder = configBuilder.WithMaxURLs(maxURLs)
	}

	if len(skipExts) > 0 {
		configBuilder = configBuilder.WithSkipExtensions(skipExts)
	}

	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if delay > 0 {
		configBuilder = configBuilder.WithDelay(delay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if respectRobots {
		configBuilder = configBuilder.WithRespectRobots(true)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if selectors != "" {
		configBuilder = configBuilder.WithSelectors(parseSelectorList(selectors))
	}

	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}

	if format != "" {
		configBuilder = configBuilder.WithFormat(config.OutputFormat(format))
	}

	if noClean {
		configBuilder = configBuilder.WithCleanBeforeRun(false)
	}

	if noHeader {
		configBuilder = configBuilder.WithIncludeHeader(false)
	}

	if hashSuffix {
		configBuilder = configBuilder.WithHashSuffix(true)
	}

	if linksFile != "" {
		configBuilder = configBuilder.WithLinksFile(linksFile)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	cfgFile = ""
	seedFile = ""
	seedURLs = []string{}
	maxURLs = 0
	skipExts = []string{}
	concurrency = 0
	delay = 0
	jitter = 0
	randomSeed = 0
	respectRobots = false
	timeout = 0
	userAgent = ""
	selectors = ""
	outputDir = ""
	format = ""
	noClean = false
	noHeader = false
	hashSuffix = false
	linksFile = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetSeedFileForTest(path string) {
	seedFile = path
}

func SetSeedURLsForTest(urls []string) {
	seedURLs = urls
}

func SetMaxURLsForTest(max int) {
	maxURLs = max
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetDelayForTest(d time.Duration) {
	delay = d
}

func SetJitterForTest(j time.Duration) {
	jitter = j
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetRespectRobotsForTest(respect bool) {
	respectRobots = respect
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetSelectorsForTest(s string) {
	selectors = s
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}

func SetFormatForTest(f string) {
	format = f
}

func SetNoCleanForTest(v bool) {
	noClean = v
}

func SetNoHeaderForTest(v bool) {
	noHeader = v
}

func SetHashSuffixForTest(v bool) {
	hashSuffix = v
}

func SetLinksFileForTest(path string) {
	linksFile = path
}
