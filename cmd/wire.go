package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/brdocs/docket/internal/adapters/credchain"
	"github.com/brdocs/docket/internal/adapters/credfile"
	"github.com/brdocs/docket/internal/adapters/history"
	"github.com/brdocs/docket/internal/adapters/portal"
	summaryadapter "github.com/brdocs/docket/internal/adapters/render/summary"
	"github.com/brdocs/docket/internal/adapters/reportfile"
	"github.com/brdocs/docket/internal/adapters/sessionfile"
	"github.com/brdocs/docket/internal/application"
	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
)

const (
	configDirName  = ".docket"
	configName     = "config"
	configType     = "toml"
	configEnvVar   = "DOCKET_CONFIG"
	credsFileName  = "credentials.json"
	envUsernameVar = "DOCKET_USER"
	envPasswordVar = "DOCKET_PASS"

	defaultPortalBaseURL = "https://pje.tjba.jus.br"
	defaultPortalSSOURL  = "https://sso.cloud.pje.jus.br"
)

// app is the composition root. The history store is opened on demand since
// opening creates the database file and most commands never touch it.
type app struct {
	sessions      *application.SessionService
	contexts      *application.ContextService
	queues        *application.QueueService
	submitter     ports.SubmitGateway
	pickup        ports.PickupGateway
	reports       ports.ReportWriter
	sessionStore  ports.SessionStore
	credFile      *credfile.Store
	overrides     *credchain.Override
	openHistory   func() (*history.Store, error)
	renderSummary func(domain.BatchReport, summaryadapter.RenderOptions) (string, error)
	logger        *slog.Logger
	logLevel      *slog.LevelVar
	cfg           appConfig
	now           func() time.Time
}

type appConfig struct {
	baseURL        string
	ssoURL         string
	requestTimeout time.Duration
	sessionPath    string
	sessionMaxAge  time.Duration
	credsPath      string
	downloadDir    string
	historyPath    string
	timing         application.BatchTiming
}

func wireApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logLevel := &slog.LevelVar{}
	logLevel.Set(slog.LevelWarn)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	client, err := portal.NewClient(portal.Config{
		BaseURL:        cfg.baseURL,
		SSOURL:         cfg.ssoURL,
		RequestTimeout: cfg.requestTimeout,
	}, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("wire portal client: %w", err)
	}

	sessionStore, err := sessionfile.NewStore(cfg.sessionPath)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}
	credStore, err := credfile.NewStore(cfg.credsPath)
	if err != nil {
		return nil, fmt.Errorf("wire credential store: %w", err)
	}

	overrides := credchain.NewOverride()
	overrides.Overlay(domain.Credentials{
		Username: os.Getenv(envUsernameVar),
		Password: os.Getenv(envPasswordVar),
	})
	creds := credchain.NewStore(overrides, credStore)

	prober := portal.NewProber(client)
	authenticator := portal.NewAuthenticator(client, nil, cfg.timing.PauseMin, cfg.timing.PauseMax)

	return &app{
		sessions: application.NewSessionService(sessionStore, creds, authenticator, prober, ports.SystemClock{}, application.SessionOptions{
			MaxAge: cfg.sessionMaxAge,
		}),
		contexts:      application.NewContextService(portal.NewContextClient(client, cfg.timing.PauseMin, cfg.timing.PauseMax), prober, sessionStore),
		queues:        application.NewQueueService(portal.NewQueueClient(client), cfg.timing.PauseMin, cfg.timing.PauseMax),
		submitter:     portal.NewSubmitClient(client, cfg.timing.PauseMin, cfg.timing.PauseMax),
		pickup:        portal.NewPickupClient(client),
		reports:       reportfile.NewWriter(),
		sessionStore:  sessionStore,
		credFile:      credStore,
		overrides:     overrides,
		openHistory:   func() (*history.Store, error) { return history.Open(cfg.historyPath) },
		renderSummary: summaryadapter.Render,
		logger:        logger,
		logLevel:      logLevel,
		cfg:           cfg,
		now:           time.Now,
	}, nil
}

func loadConfig() (appConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return appConfig{}, fmt.Errorf("resolve home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, configDirName)

	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(configDir)
	explicit := os.Getenv(configEnvVar)
	if explicit != "" {
		cfg.SetConfigFile(explicit)
	}

	cfg.SetDefault("portal.base_url", defaultPortalBaseURL)
	cfg.SetDefault("portal.sso_url", defaultPortalSSOURL)
	cfg.SetDefault("session.path", filepath.Join(configDir, "session.toml"))
	cfg.SetDefault("session.max_age", application.DefaultSessionMaxAge)
	cfg.SetDefault("download.dir", filepath.Join(homeDir, "Downloads", "docket"))
	cfg.SetDefault("history.path", filepath.Join(configDir, "history.db"))
	cfg.SetDefault("fetch.poll_interval", 15*time.Second)
	cfg.SetDefault("fetch.min_initial_wait", 15*time.Second)
	cfg.SetDefault("fetch.max_wait", 5*time.Minute)
	// Zero means three poll intervals, derived where the wait loop runs.
	cfg.SetDefault("fetch.stagnation_window", time.Duration(0))
	cfg.SetDefault("fetch.delay_min", time.Second)
	cfg.SetDefault("fetch.delay_max", 3*time.Second)
	cfg.SetDefault("fetch.request_timeout", 30*time.Second)

	cfg.SetEnvPrefix("DOCKET")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &configNotFound) {
			return appConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return appConfig{
		baseURL:        cfg.GetString("portal.base_url"),
		ssoURL:         cfg.GetString("portal.sso_url"),
		requestTimeout: cfg.GetDuration("fetch.request_timeout"),
		sessionPath:    cfg.GetString("session.path"),
		sessionMaxAge:  cfg.GetDuration("session.max_age"),
		credsPath:      filepath.Join(configDir, credsFileName),
		downloadDir:    cfg.GetString("download.dir"),
		historyPath:    cfg.GetString("history.path"),
		timing: application.BatchTiming{
			MinInitialWait:   cfg.GetDuration("fetch.min_initial_wait"),
			PollInterval:     cfg.GetDuration("fetch.poll_interval"),
			MaxWait:          cfg.GetDuration("fetch.max_wait"),
			StagnationWindow: cfg.GetDuration("fetch.stagnation_window"),
			PauseMin:         cfg.GetDuration("fetch.delay_min"),
			PauseMax:         cfg.GetDuration("fetch.delay_max"),
		},
	}, nil
}
