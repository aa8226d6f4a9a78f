package organize

import (
	"strings"

	"filebot/pkg/types"
)

// Classify walks the rules and their conditions in config order and returns
// the first condition that matches file. Nothing after the first match is
// evaluated.
func Classify(file types.CandidateFile, rules []types.Rule) (types.Match, bool) {
	return classify(file, rules, nil)
}

// classify is Classify with a hook called before each condition is evaluated.
func classify(file types.CandidateFile, rules []types.Rule, visit func(rule, cond int)) (types.Match, bool) {
	for i, rule := range rules {
		for j, cond := range rule.Conditions {
			if visit != nil {
				visit(i, j)
			}
			if MatchCondition(file, cond) {
				return types.Match{
					RuleIndex:      i,
					RuleName:       rule.Name,
					ConditionIndex: j,
					Condition:      cond,
				}, true
			}
		}
	}
	return types.Match{}, false
}

// MatchCondition reports whether file satisfies both the extension and the
// filename part of cond.
func MatchCondition(file types.CandidateFile, cond types.Condition) bool {
	return matchExtension(file.NormalizedExt(), cond.Extensions) &&
		matchFilename(file.Name, cond.FilenameContains)
}

func matchExtension(ext string, allowed []string) bool {
	for _, a := range allowed {
		if strings.TrimSpace(a) == types.WildcardExtension {
			return true
		}
	}
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if types.NormalizeExtension(a) == ext {
			return true
		}
	}
	return false
}

// matchFilename is true for an empty pattern list.
func matchFilename(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
