package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/api"
	"github.com/LikhithKalle/FARMA-Project/internal/flow"
	"github.com/LikhithKalle/FARMA-Project/internal/geo"
	"github.com/LikhithKalle/FARMA-Project/internal/i18n"
	"github.com/LikhithKalle/FARMA-Project/internal/lockfile"
	"github.com/LikhithKalle/FARMA-Project/internal/models"
	"github.com/LikhithKalle/FARMA-Project/internal/recommend"
	"github.com/LikhithKalle/FARMA-Project/internal/scheduler"
	"github.com/LikhithKalle/FARMA-Project/internal/store"
	"github.com/LikhithKalle/FARMA-Project/internal/twiliosms"
	"github.com/LikhithKalle/FARMA-Project/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for FARMA state data
	DefaultStateDir = "/var/lib/farma"
	// DefaultDBFileName is the SQLite database filename used for -db-dsn=sqlite
	DefaultDBFileName = "farma.db"
	// DefaultModelDir is the default directory holding the recommendation artifacts
	DefaultModelDir = "models"
	// SQLiteShorthand selects a SQLite database in the state directory
	SQLiteShorthand = "sqlite"
)

// logLevel is raised to debug by -debug after flags are parsed.
var logLevel = new(slog.LevelVar)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)
	if *flags.debug {
		logLevel.Set(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping FARMA with configured modules")
	if err := run(ctx, config, flags); err != nil {
		slog.Error("FARMA failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("FARMA exited successfully")
}

// Config holds environment configuration
type Config struct {
	APIAddr            string
	StateDir           string
	DatabaseURL        string
	ModelDir           string
	SessionTTL         time.Duration
	SweepInterval      time.Duration
	MaxRecommendations int
	MapTilerKey        string
	MapTilerBaseURL    string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioFromNumber   string
	SMSLanguage        string
	PublicURL          string
	Debug              bool
}

// Flags holds command line flag values
type Flags struct {
	apiAddr            *string
	stateDir           *string
	dbDSN              *string
	modelDir           *string
	sessionTTL         *time.Duration
	sweepInterval      *time.Duration
	maxRecommendations *int
	maptilerKey        *string
	debug              *bool
}

// initializeLogger installs a text handler on stdout as the default logger
func initializeLogger() {
	logLevel.Set(slog.LevelInfo)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		APIAddr:            os.Getenv("API_ADDR"),
		StateDir:           os.Getenv("FARMA_STATE_DIR"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ModelDir:           os.Getenv("FARMA_MODEL_DIR"),
		SessionTTL:         util.ParseDurationEnv("FARMA_SESSION_TTL", store.DefaultSessionTTL),
		SweepInterval:      util.ParseDurationEnv("FARMA_SWEEP_INTERVAL", scheduler.DefaultSweepInterval),
		MaxRecommendations: util.ParseIntEnv("FARMA_MAX_RECOMMENDATIONS", recommend.DefaultMaxResults),
		MapTilerKey:        os.Getenv("MAPTILER_API_KEY"),
		MapTilerBaseURL:    os.Getenv("MAPTILER_BASE_URL"),
		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:   os.Getenv("TWILIO_FROM_NUMBER"),
		SMSLanguage:        strings.ToLower(strings.TrimSpace(os.Getenv("FARMA_SMS_LANGUAGE"))),
		PublicURL:          os.Getenv("FARMA_PUBLIC_URL"),
		Debug:              util.ParseBoolEnv("FARMA_DEBUG", false),
	}

	if config.APIAddr == "" {
		config.APIAddr = api.DefaultAddr
	}
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No FARMA_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.ModelDir == "" {
		config.ModelDir = DefaultModelDir
	}
	if config.MapTilerBaseURL == "" {
		config.MapTilerBaseURL = geo.DefaultBaseURL
	}
	if config.SMSLanguage == "" {
		config.SMSLanguage = models.DefaultLanguage
	}

	slog.Debug("environment variables loaded",
		"API_ADDR", config.APIAddr,
		"FARMA_STATE_DIR", config.StateDir,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"FARMA_MODEL_DIR", config.ModelDir,
		"FARMA_SESSION_TTL", config.SessionTTL,
		"FARMA_SWEEP_INTERVAL", config.SweepInterval,
		"FARMA_MAX_RECOMMENDATIONS", config.MaxRecommendations,
		"MAPTILER_API_KEY_SET", config.MapTilerKey != "",
		"TWILIO_ACCOUNT_SID_SET", config.TwilioAccountSID != "",
		"FARMA_SMS_LANGUAGE", config.SMSLanguage)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		apiAddr:            flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		stateDir:           flag.String("state-dir", config.StateDir, "state directory for FARMA data (overrides $FARMA_STATE_DIR)"),
		dbDSN:              flag.String("db-dsn", config.DatabaseURL, "session database DSN, a SQLite path, or \"sqlite\" for the state directory (overrides $DATABASE_URL)"),
		modelDir:           flag.String("model-dir", config.ModelDir, "directory with recommendation artifacts (overrides $FARMA_MODEL_DIR)"),
		sessionTTL:         flag.Duration("session-ttl", config.SessionTTL, "idle time before a session expires (overrides $FARMA_SESSION_TTL)"),
		sweepInterval:      flag.Duration("sweep-interval", config.SweepInterval, "how often expired sessions are swept (overrides $FARMA_SWEEP_INTERVAL)"),
		maxRecommendations: flag.Int("max-recommendations", config.MaxRecommendations, "number of crops recommended (overrides $FARMA_MAX_RECOMMENDATIONS)"),
		maptilerKey:        flag.String("maptiler-key", config.MapTilerKey, "MapTiler API key (overrides $MAPTILER_API_KEY)"),
		debug:              flag.Bool("debug", config.Debug, "enable debug logging (overrides $FARMA_DEBUG)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"apiAddr", *flags.apiAddr,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"modelDir", *flags.modelDir,
		"sessionTTL", *flags.sessionTTL,
		"sweepInterval", *flags.sweepInterval,
		"maxRecommendations", *flags.maxRecommendations,
		"maptilerKeySet", *flags.maptilerKey != "",
		"debug", *flags.debug)

	return flags
}

// resolveDSN expands the "sqlite" shorthand to a database file in stateDir.
func resolveDSN(dsn, stateDir string) string {
	if strings.EqualFold(strings.TrimSpace(dsn), SQLiteShorthand) {
		return filepath.Join(stateDir, DefaultDBFileName)
	}
	return dsn
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	storeOpts := []store.Option{store.WithSessionTTL(*flags.sessionTTL)}
	dsn := resolveDSN(*flags.dbDSN, *flags.stateDir)
	if dsn == "" {
		slog.Debug("No database DSN provided, will use in-memory store")
		return storeOpts
	}
	if store.DetectDSNType(dsn) == store.DriverPostgres {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql", "dsn_set", true)
		storeOpts = append(storeOpts, store.WithPostgresDSN(dsn))
	} else {
		slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", dsn)
		storeOpts = append(storeOpts, store.WithSQLiteDSN(dsn))
	}
	return storeOpts
}

// lockStateDir locks the directory of a SQLite database so a second
// instance cannot open it. Other backends need no lock and return nil.
func lockStateDir(flags Flags) (*lockfile.Lock, error) {
	dsn := resolveDSN(*flags.dbDSN, *flags.stateDir)
	if dsn == "" || store.DetectDSNType(dsn) != store.DriverSQLite {
		return nil, nil
	}
	return lockfile.Acquire(filepath.Dir(dsn))
}

// buildEngine loads the recommendation artifacts. A missing or broken model
// directory yields an engine that recommends nothing.
func buildEngine(flags Flags) *recommend.Engine {
	artifacts, err := recommend.LoadArtifacts(*flags.modelDir)
	if err != nil {
		slog.Warn("Recommendation artifacts unavailable, recommendations disabled", "model_dir", *flags.modelDir, "error", err)
		artifacts = nil
	}
	return recommend.NewEngine(artifacts, recommend.WithMaxResults(*flags.maxRecommendations))
}

// buildLookup constructs the geo lookup, or a no-op lookup without an API key
func buildLookup(config Config, flags Flags) geo.Lookup {
	if *flags.maptilerKey == "" {
		slog.Info("No MapTiler API key configured, geocoding disabled")
		return geo.NoopLookup{}
	}
	client, err := geo.NewMapTilerClient(
		geo.WithAPIKey(*flags.maptilerKey),
		geo.WithBaseURL(config.MapTilerBaseURL),
	)
	if err != nil {
		slog.Warn("Failed to create MapTiler client, geocoding disabled", "error", err)
		return geo.NoopLookup{}
	}
	return client
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(config Config, flags Flags, engine *recommend.Engine) []api.Option {
	apiOpts := []api.Option{
		api.WithAddr(*flags.apiAddr),
		api.WithModelLoaded(engine.ModelLoaded()),
	}
	if config.PublicURL != "" {
		apiOpts = append(apiOpts, api.WithPublicURL(config.PublicURL))
	}
	if config.TwilioAccountSID == "" || config.TwilioAuthToken == "" {
		slog.Info("No Twilio credentials configured, SMS channel disabled")
		return apiOpts
	}
	client, err := twiliosms.NewClient(
		twiliosms.WithAccountSID(config.TwilioAccountSID),
		twiliosms.WithAuthToken(config.TwilioAuthToken),
		twiliosms.WithFromNumber(config.TwilioFromNumber),
	)
	if err != nil {
		slog.Warn("Failed to create Twilio client, SMS channel disabled", "error", err)
		return apiOpts
	}
	return append(apiOpts, api.WithSMS(client, config.SMSLanguage))
}

// run wires every module and serves until ctx is cancelled.
func run(ctx context.Context, config Config, flags Flags) error {
	lock, err := lockStateDir(flags)
	if err != nil {
		return err
	}
	if lock != nil {
		defer lock.Release()
	}

	st, err := store.New(buildStoreOptions(flags)...)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("Failed to close session store", "error", err)
		}
	}()

	engine := buildEngine(flags)
	machine := flow.NewMachine(st, i18n.New(), buildLookup(config, flags), engine)

	sched := scheduler.NewScheduler()
	sweeper := scheduler.NewSweeper(st, *flags.sessionTTL, scheduler.DefaultDedupRetention)
	if err := sweeper.Schedule(sched, *flags.sweepInterval); err != nil {
		return fmt.Errorf("failed to schedule session sweeper: %w", err)
	}
	defer func() {
		<-sched.Stop().Done()
	}()

	server := api.NewServer(machine, st, buildAPIOptions(config, flags, engine)...)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), api.DefaultShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return <-errCh
}
