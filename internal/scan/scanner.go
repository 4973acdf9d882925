package scan

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outguard/internal/entropy"
	"github.com/fyrsmithlabs/outguard/internal/finding"
	"github.com/fyrsmithlabs/outguard/internal/logging"
	"github.com/fyrsmithlabs/outguard/internal/secrets"
	"github.com/fyrsmithlabs/outguard/internal/signatures"
)

// Rule names for findings the scanner produces itself.
const (
	RuleKnownSecretExact   = "known_secret_exact"
	RuleKnownSecretPartial = "known_secret_partial"
	RuleHighEntropy        = "high_entropy_string"
)

const (
	// MinTextLength is the shortest text that is scanned at all.
	MinTextLength = 10

	// PartialMinSecretLength is the length a known secret must exceed to be
	// checked for partial matches.
	PartialMinSecretLength = 20

	// PartialWindow is the prefix/suffix length used for partial matches.
	PartialWindow = 16
)

// StoreProvider returns the known-secret store in effect.
// Both *secrets.Store and *secrets.Holder satisfy it.
type StoreProvider interface {
	Current() *secrets.Store
}

// ExtendedDetector supplies signature matches beyond the built-in table.
type ExtendedDetector interface {
	Detect(text string) []signatures.Match
}

// Scanner orchestrates the detectors.
type Scanner struct {
	store     StoreProvider
	sigs      []signatures.Signature
	extended  ExtendedDetector
	allowlist *Allowlist
	overlap   OverlapRule
	tracer    trace.Tracer
	logger    *logging.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSignatures replaces the built-in signature table.
func WithSignatures(sigs []signatures.Signature) Option {
	return func(s *Scanner) {
		s.sigs = sigs
	}
}

// WithExtended adds a detector whose matches follow the built-in signatures.
func WithExtended(d ExtendedDetector) Option {
	return func(s *Scanner) {
		s.extended = d
	}
}

// WithAllowlist drops signature and entropy matches the allowlist accepts.
// Known-secret matches are never allowlisted.
func WithAllowlist(a *Allowlist) Option {
	return func(s *Scanner) {
		s.allowlist = a
	}
}

// WithTracer sets the tracer used by ScanContext.
func WithTracer(t trace.Tracer) Option {
	return func(s *Scanner) {
		s.tracer = t
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scanner) {
		s.logger = l
	}
}

// New creates a scanner over the given known-secret store.
// A nil store means no known secrets.
func New(store StoreProvider, opts ...Option) *Scanner {
	s := &Scanner{
		store:   store,
		sigs:    signatures.Default(),
		overlap: PreviewPrefixOverlap,
		tracer:  otel.Tracer("outguard.scan"),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("scan")
	return s
}

// Scan returns the findings for text.
func (s *Scanner) Scan(text string) []finding.Finding {
	return s.ScanContext(context.Background(), text)
}

// ScanContext is Scan with a trace span and context-aware logging.
// The context is not used for cancellation; a scan always runs to completion.
func (s *Scanner) ScanContext(ctx context.Context, text string) []finding.Finding {
	ctx, span := s.tracer.Start(ctx, "outguard.scan",
		trace.WithAttributes(attribute.Int("text.length", TextLength(text))))
	defer span.End()

	if TextLength(text) < MinTextLength {
		span.SetAttributes(attribute.Int("findings", 0))
		return nil
	}

	var findings []finding.Finding
	findings = append(findings, s.knownSecrets(text)...)
	findings = append(findings, s.signatureMatches(ctx, text)...)
	findings = append(findings, s.entropyHits(ctx, text, findings)...)

	span.SetAttributes(
		attribute.Int("findings", len(findings)),
		attribute.String("severity.max", finding.MaxSeverity(findings).String()),
	)
	s.logger.Debug(ctx, "scan complete",
		zap.Int("text_length", TextLength(text)),
		zap.Int("findings", len(findings)))
	return findings
}

func (s *Scanner) knownSecrets(text string) []finding.Finding {
	if s.store == nil {
		return nil
	}
	var out []finding.Finding
	s.store.Current().Each(func(secret string) {
		if strings.Contains(text, secret) {
			out = append(out, finding.Finding{
				Rule:     RuleKnownSecretExact,
				Severity: finding.SeverityCritical,
				Preview:  finding.SecretPreview(secret),
			})
			return
		}
		r := []rune(secret)
		if len(r) > PartialMinSecretLength &&
			(strings.Contains(text, string(r[:PartialWindow])) ||
				strings.Contains(text, string(r[len(r)-PartialWindow:]))) {
			out = append(out, finding.Finding{
				Rule:     RuleKnownSecretPartial,
				Severity: finding.SeverityHigh,
				Preview:  finding.PartialPreview(len(r)),
			})
		}
	})
	return out
}

func (s *Scanner) signatureMatches(ctx context.Context, text string) []finding.Finding {
	matches := signatures.MatchAll(s.sigs, text)
	if s.extended != nil {
		matches = append(matches, s.extended.Detect(text)...)
	}

	out := make([]finding.Finding, 0, len(matches))
	for _, m := range matches {
		if s.allowlist.Allows(m.Value) {
			s.logger.Trace(ctx, "signature match allowlisted", zap.String("rule", m.Name))
			continue
		}
		out = append(out, m.Finding())
	}
	return out
}

// entropyHits checks each hit against every finding recorded so far,
// including earlier entropy findings, so a repeated token is reported once.
func (s *Scanner) entropyHits(ctx context.Context, text string, prior []finding.Finding) []finding.Finding {
	seen := prior
	var out []finding.Finding
	for _, hit := range entropy.Detect(text) {
		if s.overlap.Overlaps(hit.Value, seen) {
			s.logger.Trace(ctx, "entropy hit overlaps earlier finding", zap.Int("length", len(hit.Value)))
			continue
		}
		if s.allowlist.Allows(hit.Value) {
			s.logger.Trace(ctx, "entropy hit allowlisted", zap.Int("length", len(hit.Value)))
			continue
		}
		f := finding.Finding{
			Rule:     RuleHighEntropy,
			Severity: finding.SeverityMedium,
			Preview:  finding.EntropyPreview(hit.Value, hit.Entropy),
		}
		out = append(out, f)
		seen = append(seen[:len(seen):len(seen)], f)
	}
	return out
}
