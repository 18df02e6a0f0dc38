package mapping

import (
	"regexp"
	"strings"
	"sync"
)

// PathMatcher is the interface for path matching.
type PathMatcher interface {
	// Match reports whether the path matches and returns any extracted
	// template variables.
	Match(path string) (bool, map[string]string)
	Type() string
	Pattern() string
}

// ExactMatcher matches exact paths.
type ExactMatcher struct {
	path string
}

// NewExactMatcher creates a new exact path matcher.
func NewExactMatcher(path string) *ExactMatcher {
	return &ExactMatcher{path: path}
}

// Match checks if the path matches exactly.
func (m *ExactMatcher) Match(path string) (matched bool, vars map[string]string) {
	return path == m.path, nil
}

// Type returns the matcher type.
func (m *ExactMatcher) Type() string {
	return "exact"
}

// Pattern returns the pattern.
func (m *ExactMatcher) Pattern() string {
	return m.path
}

// PrefixMatcher matches path prefixes at segment boundaries.
type PrefixMatcher struct {
	prefix string
}

// NewPrefixMatcher creates a new prefix path matcher.
func NewPrefixMatcher(prefix string) *PrefixMatcher {
	return &PrefixMatcher{prefix: prefix}
}

// Match checks if the path starts with the prefix.
func (m *PrefixMatcher) Match(path string) (matched bool, vars map[string]string) {
	if !strings.HasPrefix(path, m.prefix) {
		return false, nil
	}
	if len(path) == len(m.prefix) {
		return true, nil
	}
	if strings.HasSuffix(m.prefix, "/") || path[len(m.prefix)] == '/' {
		return true, nil
	}
	return false, nil
}

// Type returns the matcher type.
func (m *PrefixMatcher) Type() string {
	return "prefix"
}

// Pattern returns the pattern.
func (m *PrefixMatcher) Pattern() string {
	return m.prefix
}

// PathWithin returns the remainder of path after the prefix, for the
// path-within-mapping attribute. The result always starts with "/".
func (m *PrefixMatcher) PathWithin(path string) string {
	rest := strings.TrimPrefix(path, strings.TrimSuffix(m.prefix, "/"))
	if rest == "" {
		return "/"
	}
	return rest
}

// segment is one element of a template pattern.
type segment struct {
	value   string
	isVar   bool
	varName string
}

// TemplateMatcher matches paths with template variables like
// /users/{id} and extracts the variable bindings.
type TemplateMatcher struct {
	pattern  string
	segments []segment
	regex    *regexp.Regexp
}

// NewTemplateMatcher creates a matcher for a pattern containing {var}
// template variables.
func NewTemplateMatcher(pattern string) (*TemplateMatcher, error) {
	segments := parseTemplate(pattern)

	var sb strings.Builder
	sb.WriteString("^")
	for _, seg := range segments {
		if seg.isVar {
			sb.WriteString("/(?P<")
			sb.WriteString(seg.varName)
			sb.WriteString(">[^/]+)")
		} else {
			sb.WriteString("/")
			sb.WriteString(regexp.QuoteMeta(seg.value))
		}
	}
	sb.WriteString("$")

	regex, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, err
	}

	return &TemplateMatcher{
		pattern:  pattern,
		segments: segments,
		regex:    regex,
	}, nil
}

// parseTemplate splits a template pattern into segments.
func parseTemplate(pattern string) []segment {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	segments := make([]segment, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			segments = append(segments, segment{
				value:   part,
				isVar:   true,
				varName: part[1 : len(part)-1],
			})
		} else {
			segments = append(segments, segment{value: part})
		}
	}

	return segments
}

// Match checks the path against the template and extracts variables.
func (m *TemplateMatcher) Match(path string) (matched bool, vars map[string]string) {
	matches := m.regex.FindStringSubmatch(path)
	if matches == nil {
		return false, nil
	}

	vars = make(map[string]string)
	for i, name := range m.regex.SubexpNames() {
		if i > 0 && name != "" && i < len(matches) {
			vars[name] = matches[i]
		}
	}

	return true, vars
}

// VariableAt returns the template variable name bound at segment index
// i, counting path segments from zero.
func (m *TemplateMatcher) VariableAt(i int) (string, bool) {
	if i < 0 || i >= len(m.segments) || !m.segments[i].isVar {
		return "", false
	}
	return m.segments[i].varName, true
}

// Type returns the matcher type.
func (m *TemplateMatcher) Type() string {
	return "template"
}

// Pattern returns the pattern.
func (m *TemplateMatcher) Pattern() string {
	return m.pattern
}

// WildcardMatcher matches paths with wildcards (*, ** and ?).
type WildcardMatcher struct {
	pattern string
	regex   *regexp.Regexp
}

// NewWildcardMatcher creates a new wildcard path matcher.
func NewWildcardMatcher(pattern string) (*WildcardMatcher, error) {
	regex, err := compileRegex(wildcardToRegex(pattern))
	if err != nil {
		return nil, err
	}
	return &WildcardMatcher{pattern: pattern, regex: regex}, nil
}

// wildcardToRegex converts a wildcard pattern to a regex pattern.
// "**" crosses segment boundaries, "*" stays within one segment and "?"
// matches a single character.
func wildcardToRegex(pattern string) string {
	var sb strings.Builder
	sb.WriteString("^")

	i := 0
	for i < len(pattern) {
		switch {
		case i+1 < len(pattern) && pattern[i:i+2] == "**":
			sb.WriteString(".*")
			i += 2
		case pattern[i] == '*':
			sb.WriteString("[^/]*")
			i++
		case pattern[i] == '?':
			sb.WriteString("[^/]")
			i++
		default:
			sb.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}

	sb.WriteString("$")
	return sb.String()
}

// Match checks if the path matches the wildcard pattern.
func (m *WildcardMatcher) Match(path string) (matched bool, vars map[string]string) {
	return m.regex.MatchString(path), nil
}

// Type returns the matcher type.
func (m *WildcardMatcher) Type() string {
	return "wildcard"
}

// Pattern returns the pattern.
func (m *WildcardMatcher) Pattern() string {
	return m.pattern
}

// RegexMatcher matches paths with a raw regular expression. Named
// capture groups become template variables.
type RegexMatcher struct {
	pattern string
	regex   *regexp.Regexp
}

// NewRegexMatcher creates a new regex path matcher.
func NewRegexMatcher(pattern string) (*RegexMatcher, error) {
	regex, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{pattern: pattern, regex: regex}, nil
}

// Match checks if the path matches the regex.
func (m *RegexMatcher) Match(path string) (matched bool, vars map[string]string) {
	matches := m.regex.FindStringSubmatch(path)
	if matches == nil {
		return false, nil
	}

	vars = make(map[string]string)
	for i, name := range m.regex.SubexpNames() {
		if i > 0 && name != "" && i < len(matches) {
			vars[name] = matches[i]
		}
	}
	if len(vars) == 0 {
		vars = nil
	}

	return true, vars
}

// Type returns the matcher type.
func (m *RegexMatcher) Type() string {
	return "regex"
}

// Pattern returns the pattern.
func (m *RegexMatcher) Pattern() string {
	return m.pattern
}

// regexCacheMaxSize bounds the compiled regex cache.
const regexCacheMaxSize = 1000

// regexCacheEntry holds a compiled regex and its access order for LRU
// eviction.
type regexCacheEntry struct {
	regex       *regexp.Regexp
	accessOrder int64
}

var (
	regexCache         = make(map[string]*regexCacheEntry)
	regexCacheMu       sync.Mutex
	regexAccessCounter int64
)

// compileRegex compiles through a bounded LRU cache so that mappings
// built from the same configuration do not recompile shared patterns.
func compileRegex(pattern string) (*regexp.Regexp, error) {
	metrics := getRegexCacheMetrics()

	regexCacheMu.Lock()
	if entry, ok := regexCache[pattern]; ok {
		regexAccessCounter++
		entry.accessOrder = regexAccessCounter
		regexCacheMu.Unlock()

		metrics.cacheHits.Inc()
		return entry.regex, nil
	}
	regexCacheMu.Unlock()

	metrics.cacheMisses.Inc()

	// Compile outside the lock; it is the expensive part.
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexCacheMu.Lock()
	defer regexCacheMu.Unlock()

	if entry, ok := regexCache[pattern]; ok {
		regexAccessCounter++
		entry.accessOrder = regexAccessCounter
		return entry.regex, nil
	}

	if len(regexCache) >= regexCacheMaxSize {
		evictLRURegexEntry()
		metrics.cacheEvictions.Inc()
	}

	regexAccessCounter++
	regexCache[pattern] = &regexCacheEntry{
		regex:       regex,
		accessOrder: regexAccessCounter,
	}
	metrics.cacheSize.Set(float64(len(regexCache)))

	return regex, nil
}

// evictLRURegexEntry removes the least recently used entry. Must be
// called with regexCacheMu held.
func evictLRURegexEntry() {
	var lruKey string
	var lruOrder int64 = -1

	for key, entry := range regexCache {
		if lruOrder == -1 || entry.accessOrder < lruOrder {
			lruOrder = entry.accessOrder
			lruKey = key
		}
	}

	if lruKey != "" {
		delete(regexCache, lruKey)
	}
}

// HasTemplateVariables checks if a pattern contains {var} segments.
func HasTemplateVariables(pattern string) bool {
	return strings.Contains(pattern, "{") && strings.Contains(pattern, "}")
}

// HasWildcards checks if a pattern contains wildcard characters.
func HasWildcards(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}
