// Package config provides configuration management for the Cashback ID name service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Namespace NamespaceConfig
	Registrar RegistrarConfig
	Store     StoreConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Ledger    LedgerConfig
	Routing   RoutingConfig
	Proof     ProofConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// NamespaceConfig holds the managed namespace settings.
// ParentName is the fixed suffix all allocated names live under.
type NamespaceConfig struct {
	ParentName string
}

// RegistrarConfig holds the on-chain registrar collaborator configuration.
// Absence of the key or RPC degrades the service to allocation-only.
type RegistrarConfig struct {
	PrivateKey       string
	PrivateKeySource string
	RPCURL           string
	RPCSource        string
	ContractAddress  string
	ChainID          int64
	Timeout          time.Duration
}

// StoreConfig holds the name allocation store configuration
type StoreConfig struct {
	SnapshotPath string
}

// CacheConfig holds the optional resolve-cache configuration.
// An empty Addr disables the cache.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LedgerConfig holds the settlement executor configuration used by /api/pay
type LedgerConfig struct {
	ExecutorURL string
	Credential  string
	Network     string
	PackageID   string
	GasBudget   uint64
}

// RoutingConfig holds the cross-chain routing service configuration
type RoutingConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ProofConfig holds the IPFS pinning service configuration for cashback proofs
type ProofConfig struct {
	APIURL     string
	GatewayURL string
	Token      string
}

// Default package id matches the published checkout package on testnet.
const defaultPackageID = "0xbdabfb7fb7822e83b2d8ba86d211347812bb3a6d454f64828ea3c17453f4e9aa"

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	key, keySource := loadRegistrarKey()
	rpcURL, rpcSource := loadRegistrarRPC()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Namespace: NamespaceConfig{
			ParentName: strings.ToLower(strings.TrimSpace(getEnv("ENS_PARENT_NAME", "cashbackid.eth"))),
		},
		Registrar: RegistrarConfig{
			PrivateKey:       key,
			PrivateKeySource: keySource,
			RPCURL:           rpcURL,
			RPCSource:        rpcSource,
			ContractAddress:  getEnv("ENS_REGISTRAR_ADDRESS", ""),
			ChainID:          int64(getEnvAsInt("ETH_CHAIN_ID", 1)),
			Timeout:          getEnvAsDuration("REGISTRAR_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			SnapshotPath: getEnv("SUBDOMAIN_STORE_PATH", "data/subdomains.json"),
		},
		Cache: CacheConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("RESOLVE_CACHE_TTL", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 20),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Ledger: LedgerConfig{
			ExecutorURL: getEnv("SUI_EXECUTOR_URL", ""),
			Credential:  getEnv("SUI_PRIVATE_KEY", ""),
			Network:     getEnv("SUI_NETWORK", "testnet"),
			PackageID:   getEnv("CASHBACK_PACKAGE_ID", defaultPackageID),
			GasBudget:   uint64(getEnvAsInt("SUI_GAS_BUDGET", 100_000_000)),
		},
		Routing: RoutingConfig{
			BaseURL: getEnv("LIFI_BASE_URL", "https://li.quest"),
			Timeout: getEnvAsDuration("LIFI_TIMEOUT", 15*time.Second),
		},
		Proof: ProofConfig{
			APIURL:     getEnv("IPFS_API_URL", "https://api.web3.storage"),
			GatewayURL: getEnv("IPFS_GATEWAY", "https://w3s.link/ipfs"),
			Token:      getEnv("WEB3_STORAGE_TOKEN", ""),
		},
	}

	return config, nil
}

// loadRegistrarKey reads the registrar signing key, preferring the explicit
// variable over the generic one, and reports which was used.
func loadRegistrarKey() (key, source string) {
	if v := os.Getenv("ETH_REGISTRAR_OWNER_PRIVATE_KEY"); v != "" {
		return strings.TrimSpace(v), "ETH_REGISTRAR_OWNER_PRIVATE_KEY"
	}
	if v := os.Getenv("PRIVATE_KEY"); v != "" {
		return strings.TrimSpace(v), "PRIVATE_KEY"
	}
	return "", ""
}

func loadRegistrarRPC() (url, source string) {
	if v := os.Getenv("ETH_RPC_URL"); v != "" {
		return strings.TrimSpace(v), "ETH_RPC_URL"
	}
	return "", ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
