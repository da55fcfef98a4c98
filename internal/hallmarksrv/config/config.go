package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultConfigFile = "/etc/brewboard/hallmarksrv.conf"

type ConfigParam struct {
	ServerPort string      `toml:"server_port"`
	HandleCORS bool        `toml:"handle_cors"`
	Auth       AuthParam   `toml:"auth"`
	DB         DBParam     `toml:"database"`
	Ledger     LedgerParam `toml:"ledger"`
	Quota      QuotaParam  `toml:"quota"`
}

type AuthParam struct {
	SigningSecret string `toml:"signing_secret"`
	TokenValidity string `toml:"token_validity"`
}

type DBParam struct {
	Type     string `toml:"type"` // "postgresql" or "memory"
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DBName   string `toml:"dbname"`
	SSLMode  string `toml:"sslmode"`
}

type LedgerParam struct {
	Network          string `toml:"network"`
	RPCEndpoint      string `toml:"rpc_endpoint"`
	FallbackEndpoint string `toml:"fallback_endpoint"`
	OperatorKey      string `toml:"operator_key"` // base58 ed25519 keypair; empty disables anchoring
	AnchorTimeout    string `toml:"anchor_timeout"`
	VerifyTimeout    string `toml:"verify_timeout"`
	PollInterval     string `toml:"poll_interval"`
}

type QuotaParam struct {
	// Limits maps subscription tier to hallmarks per period. -1 means unbounded.
	Limits map[string]int `toml:"limits"`
}

var cfg *ConfigParam

func Config() *ConfigParam {
	return cfg
}

func LoadConfig(filename string) error {
	if filename == "" {
		cfg = defaultConfig()
		return nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	var cp ConfigParam
	if _, err := toml.Decode(string(content), &cp); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}
	applyDefaults(&cp)
	cfg = &cp
	return nil
}

func defaultConfig() *ConfigParam {
	cp := &ConfigParam{
		ServerPort: "8196",
		HandleCORS: true,
	}
	applyDefaults(cp)
	return cp
}

func applyDefaults(cp *ConfigParam) {
	if cp.DB.Type == "" {
		cp.DB.Type = "memory"
	}
	if cp.DB.SSLMode == "" {
		cp.DB.SSLMode = "disable"
	}
	if cp.Ledger.Network == "" {
		cp.Ledger.Network = "devnet"
	}
	if cp.Ledger.RPCEndpoint == "" {
		cp.Ledger.RPCEndpoint = "https://api.devnet.solana.com"
	}
	if cp.Ledger.FallbackEndpoint == "" {
		cp.Ledger.FallbackEndpoint = "https://rpc.ankr.com/solana_devnet"
	}
	if cp.Ledger.AnchorTimeout == "" {
		cp.Ledger.AnchorTimeout = "45s"
	}
	if cp.Ledger.VerifyTimeout == "" {
		cp.Ledger.VerifyTimeout = "10s"
	}
	if cp.Ledger.PollInterval == "" {
		cp.Ledger.PollInterval = "2s"
	}
	if cp.Auth.TokenValidity == "" {
		cp.Auth.TokenValidity = "24h"
	}
	if cp.Quota.Limits == nil {
		cp.Quota.Limits = map[string]int{
			"starter":      10,
			"professional": 100,
			"enterprise":   -1,
		}
	}
}

func (l *LedgerParam) AnchorTimeoutDuration() time.Duration {
	return parseDurationOr(l.AnchorTimeout, 45*time.Second)
}

func (l *LedgerParam) VerifyTimeoutDuration() time.Duration {
	return parseDurationOr(l.VerifyTimeout, 10*time.Second)
}

func (l *LedgerParam) PollIntervalDuration() time.Duration {
	return parseDurationOr(l.PollInterval, 2*time.Second)
}

func (a *AuthParam) TokenValidityDuration() time.Duration {
	return parseDurationOr(a.TokenValidity, 24*time.Hour)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func (d *DBParam) Dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func init() {
	err := LoadConfig("")
	if err != nil {
		panic(err)
	}
}
