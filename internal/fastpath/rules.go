package fastpath

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is the YAML shape of a fast-path entry. String argument values may
// reference capture groups as $1..$9.
type Rule struct {
	Pattern     string                 `yaml:"pattern"`
	Capability  string                 `yaml:"capability"`
	Args        map[string]interface{} `yaml:"args,omitempty"`
	Description string                 `yaml:"description,omitempty"`
}

var groupRef = regexp.MustCompile(`\$([1-9])`)

// LoadRules reads a YAML rule file and compiles it into entries, in file
// order. Any malformed pattern fails loading; this is the configuration
// error boundary for the fast path.
func LoadRules(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules compiles YAML rule data into entries.
func ParseRules(data []byte) ([]Entry, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	entries := make([]Entry, 0, len(rules))
	for i, rule := range rules {
		if rule.Capability == "" {
			return nil, fmt.Errorf("rule %d: capability is required", i)
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): invalid pattern: %w", i, rule.Capability, err)
		}

		entry := Entry{
			Pattern:     re,
			Capability:  rule.Capability,
			Description: rule.Description,
		}
		if hasGroupRefs(rule.Args) {
			args := rule.Args
			entry.ArgsFunc = func(groups []string) map[string]interface{} {
				return expandArgs(args, groups)
			}
		} else {
			entry.Args = rule.Args
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// hasGroupRefs reports whether any string argument references a capture
// group.
func hasGroupRefs(args map[string]interface{}) bool {
	for _, v := range args {
		if s, ok := v.(string); ok && groupRef.MatchString(s) {
			return true
		}
	}
	return false
}

// expandArgs substitutes $N references with the matched capture groups.
// Out-of-range references expand to the empty string.
func expandArgs(args map[string]interface{}, groups []string) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		s, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		out[k] = groupRef.ReplaceAllStringFunc(s, func(ref string) string {
			n, _ := strconv.Atoi(strings.TrimPrefix(ref, "$"))
			if n < len(groups) {
				return groups[n]
			}
			return ""
		})
	}
	return out
}
