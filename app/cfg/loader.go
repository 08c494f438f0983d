package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./wire_inventory.db" description:"Path to the sqlite inventory database"`

	// Application configuration
	ProfilesDir       string `long:"profiles-dir" env:"PROFILES_DIR" default:"./profiles" description:"Directory containing organization profile files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"0" description:"Seconds between scheduled ingestion runs (0 disables the scheduler)"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Upstream wire feed
	FeedURL    string `long:"feed-url" env:"FEED_URL" default:"https://api.ap.org/media/v/content/feed" description:"Upstream wire feed URL"`
	FeedAPIKey string `long:"feed-api-key" env:"AP_API_KEY" description:"Upstream wire feed API key"`
	FeedQuery  string `long:"feed-query" env:"FEED_QUERY" description:"Optional upstream feed query"`
	MaxPages   int    `long:"max-pages" env:"MAX_PAGES" default:"1" description:"Maximum feed pages followed per run"`

	// Downstream content APIs
	ArcBaseURL  string `long:"arc-base-url" env:"ARC_BASE_URL" default:"https://api.{org}.arcpublishing.com" description:"Downstream API base URL, {org} is replaced by the organization id"`
	ArcToken    string `long:"arc-token" env:"ARC_ACCESS_TOKEN" description:"Bearer token for the downstream APIs"`
	ArcPriority string `long:"arc-priority" env:"ARC_PRIORITY" default:"ingestion" description:"Priority class header sent to the downstream APIs"`
	OrgID       string `long:"org-id" env:"ARC_ORG_ID" description:"Organization id used when no profile files exist"`
	Website     string `long:"website" env:"ARC_WEBSITE" description:"Website used when no profile files exist"`
	Section     string `long:"section" env:"ARC_SECTION" default:"/wires" description:"Section used when no profile files exist"`

	// Delivery policy
	StoryRate          int `long:"story-rate" env:"STORY_RATE" default:"10" description:"Story deliveries per minute"`
	PhotoRate          int `long:"photo-rate" env:"PHOTO_RATE" default:"60" description:"Photo deliveries per minute"`
	DeleteAfterDays    int `long:"delete-after-days" env:"DELETE_AFTER_DAYS" default:"3" description:"Days until a delivered story is scheduled for deletion"`
	PhotoRetentionDays int `long:"photo-retention-days" env:"PHOTO_RETENTION_DAYS" default:"60" description:"Days until a delivered photo expires"`
	HTTPTimeout        int `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"HTTP client timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Wire Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		ProfilesDir:        raw.ProfilesDir,
		Port:               raw.Port,
		SchedulerInterval:  raw.SchedulerInterval,
		APIAccessKey:       raw.APIAccessKey,
		FeedURL:            raw.FeedURL,
		FeedAPIKey:         raw.FeedAPIKey,
		FeedQuery:          raw.FeedQuery,
		MaxPages:           raw.MaxPages,
		ArcBaseURL:         raw.ArcBaseURL,
		ArcToken:           raw.ArcToken,
		ArcPriority:        raw.ArcPriority,
		OrgID:              raw.OrgID,
		Website:            raw.Website,
		Section:            raw.Section,
		StoryRate:          raw.StoryRate,
		PhotoRate:          raw.PhotoRate,
		DeleteAfterDays:    raw.DeleteAfterDays,
		PhotoRetentionDays: raw.PhotoRetentionDays,
		HTTPTimeout:        time.Duration(raw.HTTPTimeout) * time.Second,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	positiveFields := map[string]int{
		"max pages":            cfg.MaxPages,
		"story rate":           cfg.StoryRate,
		"photo rate":           cfg.PhotoRate,
		"delete after days":    cfg.DeleteAfterDays,
		"photo retention days": cfg.PhotoRetentionDays,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if cfg.SchedulerInterval < 0 {
		return fmt.Errorf("scheduler interval must be non-negative")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
