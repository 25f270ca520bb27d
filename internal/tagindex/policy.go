// Package tagindex resolves, per metric, which tags get a split-index
// entry on write (spec §4.5).
package tagindex

import "strings"

// Policy holds the global indexable-tag list and the per-metric
// override map.
type Policy struct {
	global   []string
	override map[string][]string
}

// NewPolicy builds a Policy from the already-parsed global list and
// override map.
func NewPolicy(global []string, override map[string][]string) *Policy {
	return &Policy{global: global, override: override}
}

// IndexableTags returns the resolved, order-preserved tag list for
// metricName: the override if present, otherwise the global list.
func (p *Policy) IndexableTags(metricName string) []string {
	if tags, ok := p.override[metricName]; ok {
		return tags
	}
	return p.global
}

// ParseGlobalList parses a comma-separated index_tag_list value.
// Whitespace around each entry is trimmed; empty entries are dropped.
func ParseGlobalList(raw string) []string {
	return splitAndTrim(raw, ",")
}

// ParseOverrideMap parses the metric_index_tag_list grammar:
// "metric=tag1,tag2;metric2=tagX". Whitespace is trimmed around every
// token; entries that don't contain '=' are silently dropped (§6).
func ParseOverrideMap(raw string) map[string][]string {
	result := map[string][]string{}
	for _, entry := range splitAndTrim(raw, ";") {
		eq := strings.IndexByte(entry, '=')
		if eq < 0 {
			continue
		}
		metric := strings.TrimSpace(entry[:eq])
		tags := splitAndTrim(entry[eq+1:], ",")
		if metric == "" || len(tags) == 0 {
			continue
		}
		result[metric] = tags
	}
	return result
}

func splitAndTrim(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
