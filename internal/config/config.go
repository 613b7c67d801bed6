package config

import (
	"flag"
	"os"
	"strconv"
	"sync"
	"time"
)

type Config struct {
	RunAddress    string
	DataDir       string
	JWTSecret     string
	AdminPassword string
	StaffPassword string
	Notifications *Notifications
}

func New() *Config {
	cfg := &Config{Notifications: &Notifications{}}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:10000", "server address and port")
	flag.StringVar(&cfg.DataDir, "d", "data", "directory holding pedidos.json and audit logs")
	flag.StringVar(&cfg.JWTSecret, "s", "seu_segredo_super_secreto_troque_isso_agora", "jwt signing key")
	flag.Parse()

	cfg.RunAddress = getEnv("RUN_ADDRESS", cfg.RunAddress)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "admin123")
	cfg.StaffPassword = getEnv("STAFF_PASSWORD", "funcionario123")
	cfg.Notifications.Reload()

	return cfg
}

// Notifications holds the outbound webhook settings. Values are read on Reload
// and accessed through getters, never through package-level state, so tests
// and runtime reconfiguration can swap them safely.
type Notifications struct {
	mu             sync.RWMutex
	newOrderURL    string
	statusURL      string
	apiKey         string
	enabled        bool
	requestTimeout time.Duration
}

// Reload re-reads the webhook settings from the environment.
func (n *Notifications) Reload() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.newOrderURL = getEnv("N8N_WEBHOOK_NEW_ORDER", "")
	n.statusURL = getEnv("N8N_WEBHOOK_STATUS_UPDATE", "")
	n.apiKey = getEnv("N8N_API_KEY", "")
	n.enabled = getEnvBool("N8N_NOTIFICATIONS_ENABLED", true)
	n.requestTimeout = time.Duration(getEnvInt("N8N_TIMEOUT_SECONDS", 5)) * time.Second
}

func (n *Notifications) NewOrderURL() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.newOrderURL
}

func (n *Notifications) StatusUpdateURL() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.statusURL
}

func (n *Notifications) APIKey() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.apiKey
}

func (n *Notifications) Enabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

func (n *Notifications) RequestTimeout() time.Duration {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.requestTimeout
}

// SetEndpoints overrides the webhook targets directly, bypassing the
// environment; used by tests and programmatic deployments.
func (n *Notifications) SetEndpoints(newOrderURL, statusURL, apiKey string, enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newOrderURL = newOrderURL
	n.statusURL = statusURL
	n.apiKey = apiKey
	n.enabled = enabled
	if n.requestTimeout == 0 {
		n.requestTimeout = 5 * time.Second
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
