package decision

import (
	"regexp"
	"sync"

	"github.com/upb/command-gateway/models"
	"go.uber.org/zap"
)

// MatchResult is the outcome of classifying a command against the rule set
type MatchResult struct {
	Action models.RuleAction
	Rule   *models.Rule // nil when no rule matched
}

// Matcher classifies command text against an ordered rule set.
// First match wins; when nothing matches the default is AUTO_REJECT, so the
// gateway fails closed. Matching is deterministic for a fixed rule set and
// command text.
//
// Compiled patterns are cached keyed by pattern text, so administrative
// rule changes need no explicit invalidation: a new pattern is simply a new
// cache key.
type Matcher struct {
	mu       sync.RWMutex
	compiled map[string]*regexp.Regexp
	logger   *zap.Logger
}

// NewMatcher creates a new Matcher
func NewMatcher(logger *zap.Logger) *Matcher {
	return &Matcher{
		compiled: make(map[string]*regexp.Regexp),
		logger:   logger,
	}
}

// Match walks rules in stored order and returns the action of the first
// rule whose pattern matches commandText. A stored pattern that fails to
// compile is logged and skipped rather than failing the evaluation: one
// malformed rule must not break the gateway.
func (m *Matcher) Match(commandText string, rules []*models.Rule) MatchResult {
	for _, rule := range rules {
		re, err := m.compile(rule.Pattern)
		if err != nil {
			m.logger.Warn("skipping rule with malformed pattern",
				zap.String("rule_id", rule.ID.String()),
				zap.String("pattern", rule.Pattern),
				zap.Error(err))
			continue
		}

		if re.MatchString(commandText) {
			return MatchResult{Action: rule.Action, Rule: rule}
		}
	}

	return MatchResult{Action: models.ActionAutoReject}
}

// compile returns the cached compiled pattern, compiling on first use
func (m *Matcher) compile(pattern string) (*regexp.Regexp, error) {
	m.mu.RLock()
	re, ok := m.compiled[pattern]
	m.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.compiled[pattern] = re
	m.mu.Unlock()
	return re, nil
}
