package signatures

import "github.com/fyrsmithlabs/outguard/internal/finding"

// defaultTable is compiled once; Default hands out copies.
var defaultTable = []Signature{
	// LLM and cloud API keys (self-identifying prefixes)
	MustNew("anthropic_api_key", "Anthropic API key", `(?i)sk-ant-api\S{20,}`, finding.SeverityCritical),
	MustNew("anthropic_oauth", "Anthropic OAuth token", `(?i)sk-ant-oat\S{20,}`, finding.SeverityCritical),
	MustNew("openai_key", "OpenAI project key", `(?i)sk-proj-\S{20,}`, finding.SeverityCritical),
	MustNew("openai_key_old", "OpenAI legacy key", `sk-[a-zA-Z0-9]{32,}`, finding.SeverityCritical),
	MustNew("google_api_key", "Google API key", `AIza[A-Za-z0-9_-]{35}`, finding.SeverityCritical),
	MustNew("groq_key", "Groq API key", `gsk_[A-Za-z0-9]{20,}`, finding.SeverityCritical),

	// GitHub
	MustNew("github_token", "GitHub personal or server token", `gh[ps]_[A-Za-z0-9]{36,}`, finding.SeverityCritical),
	MustNew("github_pat", "GitHub fine-grained token", `github_pat_[A-Za-z0-9_]{20,}`, finding.SeverityCritical),

	// Messaging bots
	MustNew("telegram_token", "Telegram bot token", `\d{8,10}:[A-Za-z0-9_-]{35}`, finding.SeverityCritical),

	// JWT (eyJ is base64 for `{"`)
	MustNew("jwt_token", "JSON Web Token",
		`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`, finding.SeverityHigh),

	// Private keys
	MustNew("private_key_pem", "PEM private key header",
		`(?i)-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+|DSA\s+)?PRIVATE\s+KEY-----`, finding.SeverityCritical),

	// 64 hex chars = 256-bit key, common for tokens
	MustNew("hex_secret_256", "Generic 256-bit hex secret", `(?i)\b[0-9a-f]{64}\b`, finding.SeverityMedium),

	// Base64-encoded forms of the prefixes above
	MustNew("b64_anthropic", `base64("sk-ant")`, `c2stYW50`, finding.SeverityHigh),
	MustNew("b64_openai", `base64("sk-proj")`, `c2stcHJvai`, finding.SeverityHigh),
	MustNew("b64_aiza", `base64("AIza")`, `QUl6YQ`, finding.SeverityHigh),
}

// Default returns the built-in signature catalogue in evaluation order.
func Default() []Signature {
	out := make([]Signature, len(defaultTable))
	copy(out, defaultTable)
	return out
}

// Names returns the signature names in table order.
func Names(sigs []Signature) []string {
	names := make([]string, 0, len(sigs))
	for _, s := range sigs {
		names = append(names, s.Name)
	}
	return names
}
