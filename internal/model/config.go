package model

import "time"

// Config is the full medqa configuration. Every subcommand receives it
// explicitly instead of reading package-level constants.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Crawl        CrawlConfig        `yaml:"crawl" mapstructure:"crawl"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Segment      SegmentConfig      `yaml:"segment" mapstructure:"segment"`
	Clean        CleanConfig        `yaml:"clean" mapstructure:"clean"`
	Merge        MergeConfig        `yaml:"merge" mapstructure:"merge"`
	Synth        SynthConfig        `yaml:"synth" mapstructure:"synth"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Train        TrainConfig        `yaml:"train" mapstructure:"train"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// HTTPConfig controls page fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	Referer      string        `yaml:"referer" mapstructure:"referer"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
	RetryBase    time.Duration `yaml:"retry_base" mapstructure:"retry_base"`   // Network error backoff unit: (attempt+1)*RetryBase
	BusyDelay    time.Duration `yaml:"busy_delay" mapstructure:"busy_delay"`   // Pause after 403/429/5xx
	BlockDelay   time.Duration `yaml:"block_delay" mapstructure:"block_delay"` // Pause after a soft-block page
	BlockMarkers []string      `yaml:"block_markers" mapstructure:"block_markers"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CrawlConfig controls page scraping
type CrawlConfig struct {
	Concurrency   int    `yaml:"concurrency" mapstructure:"concurrency"`
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
	Output        string `yaml:"output" mapstructure:"output"`
	Sink          string `yaml:"sink" mapstructure:"sink"` // jsonl, csv, mongo, postgres
}

// CacheConfig controls the fetched-page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitingConfig controls per-host pacing
type RateLimitingConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
	DelayMin          time.Duration `yaml:"delay_min" mapstructure:"delay_min"`
	DelayMax          time.Duration `yaml:"delay_max" mapstructure:"delay_max"`
}

// SegmentConfig controls section segmentation thresholds
type SegmentConfig struct {
	MinSectionText int      `yaml:"min_section_text" mapstructure:"min_section_text"`
	Boilerplate    []string `yaml:"boilerplate" mapstructure:"boilerplate"`
}

// CleanConfig controls record preprocessing
type CleanConfig struct {
	MinLength    int      `yaml:"min_length" mapstructure:"min_length"`
	MaxLength    int      `yaml:"max_length" mapstructure:"max_length"`
	SpamPattern  string   `yaml:"spam_pattern" mapstructure:"spam_pattern"`
	DropCategory []string `yaml:"drop_category" mapstructure:"drop_category"`
}

// MergeConfig controls dataset merging
type MergeConfig struct {
	QuestionKeys  []string `yaml:"question_keys" mapstructure:"question_keys"`
	AnswerKeys    []string `yaml:"answer_keys" mapstructure:"answer_keys"`
	Output        string   `yaml:"output" mapstructure:"output"`
	DuplicateFile string   `yaml:"duplicate_file" mapstructure:"duplicate_file"`
}

// SynthConfig controls QA synthesis
type SynthConfig struct {
	Mode            string        `yaml:"mode" mapstructure:"mode"` // topic, section, crosslingual, pubmedqa
	Output          string        `yaml:"output" mapstructure:"output"`
	BatchSize       int           `yaml:"batch_size" mapstructure:"batch_size"`
	TargetQuestions int           `yaml:"target_questions" mapstructure:"target_questions"`
	MinItems        int           `yaml:"min_items" mapstructure:"min_items"`
	CompleteAt      int           `yaml:"complete_at" mapstructure:"complete_at"`
	MinStatement    int           `yaml:"min_statement" mapstructure:"min_statement"`
	MinContext      int           `yaml:"min_context" mapstructure:"min_context"`
	MaxContext      int           `yaml:"max_context" mapstructure:"max_context"`
	MaxAttempts     int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	QuotaPause      time.Duration `yaml:"quota_pause" mapstructure:"quota_pause"`
	ErrorPause      time.Duration `yaml:"error_pause" mapstructure:"error_pause"`
	BatchDelay      time.Duration `yaml:"batch_delay" mapstructure:"batch_delay"`
	Temperature     float32       `yaml:"temperature" mapstructure:"temperature"`
}

// LLMConfig holds generative model provider settings
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, gemini, anthropic, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// TrainConfig controls classifier training preparation
type TrainConfig struct {
	DataDir       string  `yaml:"data_dir" mapstructure:"data_dir"`
	CheckpointDir string  `yaml:"checkpoint_dir" mapstructure:"checkpoint_dir"`
	OutputDir     string  `yaml:"output_dir" mapstructure:"output_dir"`
	BaseModel     string  `yaml:"base_model" mapstructure:"base_model"`
	ValFraction   float64 `yaml:"val_fraction" mapstructure:"val_fraction"`
	Seed          uint64  `yaml:"seed" mapstructure:"seed"`
	MaxLength     int     `yaml:"max_length" mapstructure:"max_length"`
	BatchSize     int     `yaml:"batch_size" mapstructure:"batch_size"`
	Epochs        int     `yaml:"epochs" mapstructure:"epochs"`
	LearningRate  float64 `yaml:"learning_rate" mapstructure:"learning_rate"`
	TrainerCmd    string  `yaml:"trainer_cmd" mapstructure:"trainer_cmd"`
}

// StoreConfig holds optional database sinks
type StoreConfig struct {
	MongoURI        string `yaml:"mongo_uri,omitempty" mapstructure:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database" mapstructure:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection" mapstructure:"mongo_collection"`
	PostgresDSN     string `yaml:"postgres_dsn,omitempty" mapstructure:"postgres_dsn"`
}

// LogConfig controls structured diagnostics
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultBlockMarkers are phrases shown by known soft-block pages
var DefaultBlockMarkers = []string{"Access Denied", "Verify you are human", "Attention Required", "complete the security check"}

// DefaultBoilerplate are promotional fragments dropped from paragraphs
var DefaultBoilerplate = []string{"Vinmec", "ĐẶT LỊCH", "TẠI ĐÂY", "Xem thêm"}

// DefaultSpamPattern is removed from record text during cleaning
const DefaultSpamPattern = `Xem thêm:|ĐẶT LỊCH KHÁM|TẠI ĐÂY|hotline|Bệnh viện Đa khoa Quốc tế|Vinmec|Bài viết này được viết cho người đọc|Nguồn tham khảo|được bảo vệ bản quyền|Bấm nút theo dõi|SĐT|www\.vinmec\.com`

// DefaultConfig returns the settings the batch jobs have always run with
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			MaxBodyBytes: 5_000_000,
			MaxRetries:   3,
			RetryBase:    5 * time.Second,
			BusyDelay:    10 * time.Second,
			BlockDelay:   30 * time.Second,
			BlockMarkers: DefaultBlockMarkers,
		},
		Crawl: CrawlConfig{
			Concurrency:   1,
			RespectRobots: true,
			Output:        "records.jsonl",
			Sink:          "jsonl",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".medqa-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         1,
			DelayMin:          1500 * time.Millisecond,
			DelayMax:          3 * time.Second,
		},
		Segment: SegmentConfig{
			MinSectionText: 20,
			Boilerplate:    DefaultBoilerplate,
		},
		Clean: CleanConfig{
			MinLength:    50,
			MaxLength:    3000,
			SpamPattern:  DefaultSpamPattern,
			DropCategory: []string{string(CategoryOther)},
		},
		Merge: MergeConfig{
			QuestionKeys:  []string{"input", "cau_hoi", "question", "instruction"},
			AnswerKeys:    []string{"output", "dap_an", "answer", "response"},
			Output:        "train_data_final.jsonl",
			DuplicateFile: "removed_duplicates.jsonl",
		},
		Synth: SynthConfig{
			Mode:            "topic",
			Output:          "training_dataset_final.jsonl",
			BatchSize:       50,
			TargetQuestions: 50,
			MinItems:        10,
			CompleteAt:      40,
			MinStatement:    15,
			MinContext:      200,
			MaxContext:      3000,
			MaxAttempts:     3,
			QuotaPause:      120 * time.Second,
			ErrorPause:      5 * time.Second,
			BatchDelay:      10 * time.Second,
			Temperature:     0.4,
		},
		LLM: LLMConfig{
			Provider:  "gemini",
			Model:     "gemini-2.5-flash",
			Timeout:   600,
			MaxTokens: 8192,
		},
		Train: TrainConfig{
			DataDir:       "train-data",
			CheckpointDir: "checkpoints",
			OutputDir:     "phobert_large_final",
			BaseModel:     "vinai/phobert-large",
			ValFraction:   0.1,
			Seed:          42,
			MaxLength:     128,
			BatchSize:     32,
			Epochs:        1,
			LearningRate:  2e-5,
		},
		Store: StoreConfig{
			MongoDatabase:   "medqa",
			MongoCollection: "records",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
