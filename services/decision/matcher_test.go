package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/upb/command-gateway/models"
	"go.uber.org/zap"
)

func newRules(pairs ...[2]string) []*models.Rule {
	rules := make([]*models.Rule, 0, len(pairs))
	for i, p := range pairs {
		rule := models.NewRule(p[0], models.RuleAction(p[1]))
		rule.Seq = int64(i + 1)
		rules = append(rules, rule)
	}
	return rules
}

func TestMatcher_FirstMatchWins(t *testing.T) {
	matcher := NewMatcher(zap.NewNop())

	// ".*" matches everything, so the second rule never fires even though
	// its pattern also matches syntactically.
	rules := newRules(
		[2]string{`.*`, "AUTO_REJECT"},
		[2]string{`^ls`, "AUTO_ACCEPT"},
	)

	result := matcher.Match("ls -la", rules)

	assert.Equal(t, models.ActionAutoReject, result.Action)
	assert.Equal(t, rules[0].ID, result.Rule.ID)
}

func TestMatcher_OrderDeterminesOutcome(t *testing.T) {
	matcher := NewMatcher(zap.NewNop())

	rules := newRules(
		[2]string{`rm\s+-rf\s+/`, "AUTO_REJECT"},
		[2]string{`^(ls|cat|pwd|echo)`, "AUTO_ACCEPT"},
	)

	t.Run("dangerous command rejected", func(t *testing.T) {
		result := matcher.Match("rm -rf /", rules)
		assert.Equal(t, models.ActionAutoReject, result.Action)
		assert.Equal(t, rules[0].ID, result.Rule.ID)
	})

	t.Run("safe command accepted", func(t *testing.T) {
		result := matcher.Match("ls -la", rules)
		assert.Equal(t, models.ActionAutoAccept, result.Action)
		assert.Equal(t, rules[1].ID, result.Rule.ID)
	})
}

func TestMatcher_NoMatchFailsClosed(t *testing.T) {
	matcher := NewMatcher(zap.NewNop())

	rules := newRules([2]string{`^ls`, "AUTO_ACCEPT"})

	result := matcher.Match("whoami", rules)

	assert.Equal(t, models.ActionAutoReject, result.Action)
	assert.Nil(t, result.Rule)
}

func TestMatcher_EmptyRuleSetFailsClosed(t *testing.T) {
	matcher := NewMatcher(zap.NewNop())

	result := matcher.Match("ls", nil)

	assert.Equal(t, models.ActionAutoReject, result.Action)
	assert.Nil(t, result.Rule)
}

func TestMatcher_MalformedPatternSkipped(t *testing.T) {
	matcher := NewMatcher(zap.NewNop())

	// Unbalanced parenthesis does not compile; evaluation must proceed to
	// the next rule and produce the same outcome as without it.
	rules := newRules(
		[2]string{`(unbalanced`, "AUTO_REJECT"},
		[2]string{`^ls`, "AUTO_ACCEPT"},
	)

	result := matcher.Match("ls -la", rules)

	assert.Equal(t, models.ActionAutoAccept, result.Action)
	assert.Equal(t, rules[1].ID, result.Rule.ID)
}

func TestMatcher_Deterministic(t *testing.T) {
	matcher := NewMatcher(zap.NewNop())

	rules := newRules(
		[2]string{`git\s+(status|log|diff)`, "AUTO_ACCEPT"},
		[2]string{`.*`, "AUTO_REJECT"},
	)

	first := matcher.Match("git status", rules)
	for i := 0; i < 10; i++ {
		again := matcher.Match("git status", rules)
		assert.Equal(t, first.Action, again.Action)
		assert.Equal(t, first.Rule.ID, again.Rule.ID)
	}
}

func TestMatcher_CachesCompiledPatterns(t *testing.T) {
	matcher := NewMatcher(zap.NewNop())

	rules := newRules([2]string{`^ls`, "AUTO_ACCEPT"})

	matcher.Match("ls", rules)
	matcher.mu.RLock()
	_, cached := matcher.compiled[`^ls`]
	matcher.mu.RUnlock()

	assert.True(t, cached)
}
