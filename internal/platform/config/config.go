package config

import (
	"os"
	"time"
)

// Server captures process-level configuration for the issuance service.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration
	DatabaseURL   string

	Ledger       Ledger
	Verification Verification
}

// Ledger configures the external ledger capability used for anchoring.
// An empty RPCURL means no ledger is configured; the orchestrator reports
// ledger_unavailable rather than guessing at a default endpoint.
type Ledger struct {
	RPCURL          string
	Network         string
	ContractAddress string
	ExplorerBaseURL string
	ConfirmTimeout  time.Duration
}

// Verification configures the public verification surface.
type Verification struct {
	PublicBaseURL string
}

// Configured reports whether the ledger capability has enough settings to publish.
func (l Ledger) Configured() bool {
	return l.Network != "" && l.ContractAddress != ""
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("IJAZAH_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 15 * time.Minute
	if s := os.Getenv("TOKEN_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			tokenTTL = d
		}
	}

	confirmTimeout := 2 * time.Minute
	if s := os.Getenv("LEDGER_CONFIRM_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			confirmTimeout = d
		}
	}

	network := os.Getenv("LEDGER_NETWORK")
	if network == "" {
		network = "polygon-amoy"
	}

	verifyBase := os.Getenv("VERIFICATION_PUBLIC_BASE_URL")
	if verifyBase == "" {
		verifyBase = "http://localhost:8080"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      tokenTTL,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Ledger: Ledger{
			RPCURL:          os.Getenv("LEDGER_RPC_URL"),
			Network:         network,
			ContractAddress: os.Getenv("CREDENTIAL_REGISTRY_ADDRESS"),
			ExplorerBaseURL: os.Getenv("LEDGER_EXPLORER_BASE_URL"),
			ConfirmTimeout:  confirmTimeout,
		},
		Verification: Verification{
			PublicBaseURL: verifyBase,
		},
	}
}
