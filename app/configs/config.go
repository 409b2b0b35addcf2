package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ConfigurationError marks a missing required credential or identifier.
// It is fatal at startup and never recoverable per request.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

type Config struct {
	Agent    AgentConfig    `json:"agent"`
	Notion   NotionConfig   `json:"notion"`
	AI       AIConfig       `json:"ai"`
	Telegram TelegramConfig `json:"telegram"`
	Workflow WorkflowConfig `json:"workflow"`
}

type AgentConfig struct {
	Name string `json:"name"`
}

type NotionConfig struct {
	Token              string `json:"token"`
	TasksDatabaseID    string `json:"tasks_database_id"`
	ProjectsDatabaseID string `json:"projects_database_id"`
	APIRoot            string `json:"api_root"`
	TimeoutSec         int    `json:"timeout_sec"`
}

type AIConfig struct {
	APIKey      string  `json:"api_key"`
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TimeoutSec  int     `json:"timeout_sec"`
}

type TelegramConfig struct {
	BotToken        string   `json:"bot_token"`
	AdminUserIDs    []string `json:"admin_user_ids"`
	PollIntervalSec int      `json:"poll_interval_sec"`
}

type WorkflowConfig struct {
	ProjectCacheTTLSec int `json:"project_cache_ttl_sec"`
	CreatePacingMS     int `json:"create_pacing_ms"`
	QueryLimit         int `json:"query_limit"`
}

type Manager struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

func DefaultPath() string {
	return filepath.Join("config", "config.json")
}

func NewManager(path string) (*Manager, error) {
	cfg := defaultConfig()
	mgr := &Manager{
		path: path,
		cfg:  cfg,
	}
	if err := mgr.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	mgr.applyEnv()
	applyDefaults(&mgr.cfg)
	return mgr, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Update(apply func(*Config)) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(&m.cfg)
	applyDefaults(&m.cfg)
	if err := m.saveLocked(); err != nil {
		return Config{}, err
	}
	return m.cfg, nil
}

// Validate checks the credentials the pipeline cannot run without.
func (m *Manager) Validate() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var missing []string
	if strings.TrimSpace(m.cfg.Notion.Token) == "" {
		missing = append(missing, "NOTION_TOKEN")
	}
	if strings.TrimSpace(m.cfg.Notion.TasksDatabaseID) == "" {
		missing = append(missing, "NOTION_DB_TAREAS")
	}
	if strings.TrimSpace(m.cfg.AI.APIKey) == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	m.cfg = fileCfg
	return nil
}

// applyEnv lets environment variables override the file, credentials first.
func (m *Manager) applyEnv() {
	if v := os.Getenv("NOTION_TOKEN"); v != "" {
		m.cfg.Notion.Token = v
	}
	if v := os.Getenv("NOTION_DB_TAREAS"); v != "" {
		m.cfg.Notion.TasksDatabaseID = v
	}
	if v := os.Getenv("NOTION_DB_PROYECTOS"); v != "" {
		m.cfg.Notion.ProjectsDatabaseID = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		m.cfg.AI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		m.cfg.AI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		m.cfg.AI.Model = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		m.cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_ADMIN_IDS"); v != "" {
		m.cfg.Telegram.AdminUserIDs = parseAdminIDs(v)
	}
}

// parseAdminIDs accepts "1,2,3" and the bracketed "[1, 2, 3]" form.
func parseAdminIDs(raw string) []string {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func (m *Manager) save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

func defaultConfig() Config {
	return Config{
		Agent: AgentConfig{
			Name: "ELiaS",
		},
		Notion: NotionConfig{
			APIRoot:    "https://api.notion.com",
			TimeoutSec: 30,
		},
		AI: AIConfig{
			Model:       "gemini-2.0-flash",
			Temperature: 0,
			MaxTokens:   8192,
			TimeoutSec:  60,
		},
		Telegram: TelegramConfig{
			PollIntervalSec: 2,
		},
		Workflow: WorkflowConfig{
			ProjectCacheTTLSec: 300,
			CreatePacingMS:     500,
			QueryLimit:         100,
		},
	}
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Agent.Name) == "" {
		cfg.Agent.Name = "ELiaS"
	}
	if strings.TrimSpace(cfg.Notion.APIRoot) == "" {
		cfg.Notion.APIRoot = "https://api.notion.com"
	}
	if cfg.Notion.TimeoutSec <= 0 {
		cfg.Notion.TimeoutSec = 30
	}
	if strings.TrimSpace(cfg.AI.Model) == "" {
		cfg.AI.Model = "gemini-2.0-flash"
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 8192
	}
	if cfg.AI.TimeoutSec <= 0 {
		cfg.AI.TimeoutSec = 60
	}
	if cfg.Telegram.PollIntervalSec <= 0 {
		cfg.Telegram.PollIntervalSec = 2
	}
	if cfg.Workflow.ProjectCacheTTLSec <= 0 {
		cfg.Workflow.ProjectCacheTTLSec = 300
	}
	if cfg.Workflow.CreatePacingMS < 0 {
		cfg.Workflow.CreatePacingMS = 0
	}
	if cfg.Workflow.QueryLimit <= 0 || cfg.Workflow.QueryLimit > 100 {
		cfg.Workflow.QueryLimit = 100
	}
}
