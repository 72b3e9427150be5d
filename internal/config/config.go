package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const oneDaySeconds = 60 * 60 * 24

type Config struct {
	//===============
	//  Freshness budgets (seconds)
	//===============
	// Hard lifetime of a successfully cached robots.txt entry.
	totalTTL int
	// Age at which a successful entry is queued for background refresh.
	refreshTTL int
	// Hard lifetime of a cached fetch-failure entry.
	notAvailTotalTTL int
	// Age at which a failure entry is queued for background refresh.
	notAvailRefreshTTL int

	//===============
	// Storage
	//===============
	// Whether robots payloads are gzip-compressed before being written
	// to the key-value store.
	gzipStorage bool
	// Address of the key-value store (host:port).
	storeAddr string
	// Store database index.
	storeDB int
	// Key of the capped background-refresh queue.
	queueKey string
	// Maximum length of the background-refresh queue.
	queueMaxSize int

	//===============
	// Migration
	//===============
	// While active, legacy generic-error tokens cached by the previous
	// cache generation are not trusted during the cut-over window.
	migrationPeriodActive bool
	// When this process started; anchors the migration cut-over window.
	processStart time.Time

	//===============
	// Live fetch
	//===============
	// Maximum time of a single live robots.txt fetch.
	fetchTimeout time.Duration
	// User agent used in live fetch request headers. In raw string
	userAgent string

	//===============
	// Store retry / refresh pacing
	//===============
	// Maximum attempts for a single store operation.
	maxAttempt int
	// Initial delay for store retry backoff.
	backoffInitialDuration time.Duration
	// Multiplier during exponential backoff.
	backoffMultiplier float64
	// Capped maximum delay for backoff.
	backoffMaxDuration time.Duration
	// Randomized variation added on top of delays.
	jitter time.Duration
	// Controls the random number generator.
	randomSeed int64
	// Minimum waiting time between refreshes against the same host.
	baseDelay time.Duration
}

type configDTO struct {
	TotalTTL               int           `json:"totalTtl,omitempty"`
	RefreshTTL             int           `json:"refreshTtl,omitempty"`
	NotAvailTotalTTL       int           `json:"notAvailTotalTtl,omitempty"`
	NotAvailRefreshTTL     int           `json:"notAvailRefreshTtl,omitempty"`
	GzipStorage            bool          `json:"gzipStorage,omitempty"`
	StoreAddr              string        `json:"storeAddr,omitempty"`
	StoreDB                int           `json:"storeDb,omitempty"`
	QueueKey               string        `json:"queueKey,omitempty"`
	QueueMaxSize           int           `json:"queueMaxSize,omitempty"`
	MigrationPeriodActive  bool          `json:"migrationPeriodActive,omitempty"`
	FetchTimeout           time.Duration `json:"fetchTimeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	BaseDelay              time.Duration `json:"baseDelay,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {

	// Start with default config
	cfg, err := WithDefault().Build()
	if err != nil {
		return Config{}, err
	}

	// Only override if a non-zero value is provided
	if dto.TotalTTL != 0 {
		cfg.totalTTL = dto.TotalTTL
	}
	if dto.RefreshTTL != 0 {
		cfg.refreshTTL = dto.RefreshTTL
	}
	if dto.NotAvailTotalTTL != 0 {
		cfg.notAvailTotalTTL = dto.NotAvailTotalTTL
	}
	if dto.NotAvailRefreshTTL != 0 {
		cfg.notAvailRefreshTTL = dto.NotAvailRefreshTTL
	}
	if dto.StoreAddr != "" {
		cfg.storeAddr = dto.StoreAddr
	}
	if dto.StoreDB != 0 {
		cfg.storeDB = dto.StoreDB
	}
	if dto.QueueKey != "" {
		cfg.queueKey = dto.QueueKey
	}
	if dto.QueueMaxSize != 0 {
		cfg.queueMaxSize = dto.QueueMaxSize
	}
	if dto.FetchTimeout != 0 {
		cfg.fetchTimeout = dto.FetchTimeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.BaseDelay != 0 {
		cfg.baseDelay = dto.BaseDelay
	}
	// Booleans are taken as-is since their zero value is false
	cfg.gzipStorage = dto.GzipStorage
	cfg.migrationPeriodActive = dto.MigrationPeriodActive

	return cfg, nil
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

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with default values for all fields.
// The defaults mirror the long-standing production budgets: successful
// entries live ten days and refresh daily; failure entries live two days
// and refresh twice a day.
func WithDefault() *Config {
	defaultConfig := Config{
		totalTTL:               oneDaySeconds * 10,
		refreshTTL:             oneDaySeconds,
		notAvailTotalTTL:       oneDaySeconds * 2,
		notAvailRefreshTTL:     oneDaySeconds / 2,
		gzipStorage:            false,
		storeAddr:              "localhost:6379",
		storeDB:                0,
		queueKey:               "robots_update_queue",
		queueMaxSize:           50000,
		migrationPeriodActive:  false,
		processStart:           time.Now(),
		fetchTimeout:           time.Second * 10,
		userAgent:              "wayback-robots-cache/1.0",
		maxAttempt:             3,
		backoffInitialDuration: 100 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     2 * time.Second,
		jitter:                 time.Millisecond * 500,
		randomSeed:             time.Now().UnixNano(),
		baseDelay:              time.Second,
	}
	return &defaultConfig
}

func (c *Config) WithTotalTTL(seconds int) *Config {
	c.totalTTL = seconds
	return c
}

func (c *Config) WithRefreshTTL(seconds int) *Config {
	c.refreshTTL = seconds
	return c
}

func (c *Config) WithNotAvailTotalTTL(seconds int) *Config {
	c.notAvailTotalTTL = seconds
	return c
}

func (c *Config) WithNotAvailRefreshTTL(seconds int) *Config {
	c.notAvailRefreshTTL = seconds
	return c
}

func (c *Config) WithGzipStorage(gzip bool) *Config {
	c.gzipStorage = gzip
	return c
}

func (c *Config) WithStoreAddr(addr string) *Config {
	c.storeAddr = addr
	return c
}

func (c *Config) WithStoreDB(db int) *Config {
	c.storeDB = db
	return c
}

func (c *Config) WithQueueKey(key string) *Config {
	c.queueKey = key
	return c
}

func (c *Config) WithQueueMaxSize(size int) *Config {
	c.queueMaxSize = size
	return c
}

func (c *Config) WithMigrationPeriodActive(active bool) *Config {
	c.migrationPeriodActive = active
	return c
}

func (c *Config) WithProcessStart(start time.Time) *Config {
	c.processStart = start
	return c
}

func (c *Config) WithFetchTimeout(timeout time.Duration) *Config {
	c.fetchTimeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
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

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

// Build validates the configuration and returns an immutable copy.
func (c *Config) Build() (Config, error) {
	if c.totalTTL <= 0 || c.notAvailTotalTTL <= 0 {
		return Config{}, fmt.Errorf("%w: total TTLs must be positive", ErrInvalidConfig)
	}
	if c.refreshTTL <= 0 || c.notAvailRefreshTTL <= 0 {
		return Config{}, fmt.Errorf("%w: refresh TTLs must be positive", ErrInvalidConfig)
	}
	if c.refreshTTL > c.totalTTL {
		return Config{}, fmt.Errorf("%w: refreshTtl exceeds totalTtl", ErrInvalidConfig)
	}
	if c.notAvailRefreshTTL > c.notAvailTotalTTL {
		return Config{}, fmt.Errorf("%w: notAvailRefreshTtl exceeds notAvailTotalTtl", ErrInvalidConfig)
	}
	if c.queueMaxSize <= 0 {
		return Config{}, fmt.Errorf("%w: queueMaxSize must be positive", ErrInvalidConfig)
	}
	if c.processStart.IsZero() {
		c.processStart = time.Now()
	}
	return *c, nil
}

func (c *Config) TotalTTL() int {
	return c.totalTTL
}

func (c *Config) RefreshTTL() int {
	return c.refreshTTL
}

func (c *Config) NotAvailTotalTTL() int {
	return c.notAvailTotalTTL
}

func (c *Config) NotAvailRefreshTTL() int {
	return c.notAvailRefreshTTL
}

func (c *Config) GzipStorage() bool {
	return c.gzipStorage
}

func (c *Config) StoreAddr() string {
	return c.storeAddr
}

func (c *Config) StoreDB() int {
	return c.storeDB
}

func (c *Config) QueueKey() string {
	return c.queueKey
}

func (c *Config) QueueMaxSize() int {
	return c.queueMaxSize
}

func (c *Config) MigrationPeriodActive() bool {
	return c.migrationPeriodActive
}

func (c *Config) ProcessStart() time.Time {
	return c.processStart
}

func (c *Config) FetchTimeout() time.Duration {
	return c.fetchTimeout
}

func (c *Config) UserAgent() string {
	return c.userAgent
}

func (c *Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c *Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c *Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c *Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c *Config) Jitter() time.Duration {
	return c.jitter
}

func (c *Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c *Config) BaseDelay() time.Duration {
	return c.baseDelay
}
