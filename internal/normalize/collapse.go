package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rpillich/ndexsignorloader/internal/cx"
)

// SentenceAttr is the edge attribute holding the supporting sentence text.
const SentenceAttr = "sentence"

// ContextAttr is the network attribute holding the JSON namespace context,
// whose "pubmed" field supplies the base URL for citation hyperlinks.
const ContextAttr = "@context"

// RedundantEdgeCollapser merges parallel edges that share the same
// (interaction, source, target) key into a single edge. Attribute values are
// merged as set unions and written back as sorted lists of strings, except
// "direct" which stays a boolean. Sentence values are prefixed with hyperlink
// fragments built from the owning edge's citations so evidence provenance
// survives the merge.
type RedundantEdgeCollapser struct {
	pubmedURL string
}

func NewRedundantEdgeCollapser() *RedundantEdgeCollapser {
	return &RedundantEdgeCollapser{}
}

func (u *RedundantEdgeCollapser) Description() string {
	return "Collapses redundant edges"
}

func (u *RedundantEdgeCollapser) Update(net *cx.Network) []string {
	if net == nil {
		return []string{"Network passed in is None"}
	}
	u.pubmedURL = pubmedURLFromContext(net)

	var issues []string
	index := buildEdgeIndex(net)
	for _, interaction := range sortedKeys(index) {
		bySource := index[interaction]
		for _, source := range sortedInt64Keys(bySource) {
			byTarget := bySource[source]
			for _, target := range sortedInt64Keys(byTarget) {
				bucket := byTarget[target]
				if len(bucket) < 2 {
					continue
				}
				issues = append(issues, u.collapseBucket(net, bucket)...)
			}
		}
	}
	return issues
}

// buildEdgeIndex builds the interaction -> source -> target -> edge ids index
// in a single pass over the edges. Bucket slices come out ordered by edge id.
func buildEdgeIndex(net *cx.Network) map[string]map[int64]map[int64][]int64 {
	index := make(map[string]map[int64]map[int64][]int64)
	for _, edge := range net.Edges() {
		bySource := index[edge.Interaction]
		if bySource == nil {
			bySource = make(map[int64]map[int64][]int64)
			index[edge.Interaction] = bySource
		}
		byTarget := bySource[edge.Source]
		if byTarget == nil {
			byTarget = make(map[int64][]int64)
			bySource[edge.Source] = byTarget
		}
		byTarget[edge.Target] = append(byTarget[edge.Target], edge.ID)
	}
	return index
}

// mergedAttr accumulates the distinct values contributed for one attribute
// name across a bucket, together with its originally declared type.
type mergedAttr struct {
	values map[string]struct{}
	typ    string
}

func (m *mergedAttr) add(v string) {
	m.values[v] = struct{}{}
}

func (m *mergedAttr) sorted() []string {
	out := make([]string, 0, len(m.values))
	for v := range m.values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// collapseBucket merges every edge of the bucket into the edge with the
// lowest id and deletes the rest.
func (u *RedundantEdgeCollapser) collapseBucket(net *cx.Network, bucket []int64) []string {
	var issues []string
	representative := bucket[0]

	merged := make(map[string]*mergedAttr)
	repCitation := u.citationFragment(net.EdgeAttribute(representative, CitationAttr))
	for _, attr := range net.EdgeAttributes(representative) {
		ma := &mergedAttr{values: make(map[string]struct{}), typ: attr.Type}
		for _, v := range attributeValues(attr) {
			if attr.Name == SentenceAttr && net.EdgeAttribute(representative, CitationAttr) != nil {
				v = repCitation + v
			}
			ma.add(v)
		}
		merged[attr.Name] = ma
	}

	for _, edgeID := range bucket[1:] {
		foldCitation := u.citationFragment(net.EdgeAttribute(edgeID, CitationAttr)) + " "
		for _, attr := range net.EdgeAttributes(edgeID) {
			ma, ok := merged[attr.Name]
			if !ok {
				issues = append(issues, fmt.Sprintf(
					"Found unexpected new attribute %s on edge id: %d", attr.Name, edgeID))
				continue
			}
			for _, v := range attributeValues(attr) {
				if attr.Name == SentenceAttr {
					v = foldCitation + v
				}
				ma.add(v)
			}
		}
		net.RemoveEdge(edgeID)
	}

	issues = append(issues, writeMergedAttributes(net, representative, merged)...)
	return issues
}

func writeMergedAttributes(net *cx.Network, edgeID int64, merged map[string]*mergedAttr) []string {
	var issues []string
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ma := merged[name]
		net.RemoveEdgeAttribute(edgeID, name)
		if name == DirectAttr {
			values := ma.sorted()
			if len(values) > 1 {
				issues = append(issues, fmt.Sprintf(
					"%s attribute has multiple values: %v", DirectAttr, values))
			}
			// a relation reported as direct by any source stays direct
			direct := false
			for _, v := range values {
				if v == "true" {
					direct = true
				}
			}
			net.SetEdgeAttribute(edgeID, name, direct, cx.BooleanType, true)
			continue
		}
		net.SetEdgeAttribute(edgeID, name, ma.sorted(), cx.ListOfStringType, true)
	}
	return issues
}

// citationFragment renders an edge's citations as HTML hyperlink fragments,
// one per citation each followed by a space. Without a pubmed base URL each
// citation renders as a single space instead.
func (u *RedundantEdgeCollapser) citationFragment(citation *cx.Attribute) string {
	if citation == nil {
		return ""
	}
	var b strings.Builder
	for _, entry := range citation.ListValue() {
		if u.pubmedURL == "" {
			b.WriteString(" ")
			continue
		}
		id := entry
		if idx := strings.Index(entry, ":"); idx >= 0 {
			id = entry[idx+1:]
		}
		b.WriteString(`<a target="_blank" href="` + u.pubmedURL + id + `">pubmed:` + id + `</a> `)
	}
	return b.String()
}

// attributeValues canonicalizes an attribute value into strings: lists keep
// their elements, scalars become one element, booleans format as true/false.
func attributeValues(attr *cx.Attribute) []string {
	switch v := attr.Value.(type) {
	case []string:
		return v
	case string:
		return []string{v}
	case bool:
		return []string{strconv.FormatBool(v)}
	}
	return []string{fmt.Sprintf("%v", attr.Value)}
}

func pubmedURLFromContext(net *cx.Network) string {
	attr := net.NetworkAttribute(ContextAttr)
	if attr == nil {
		return ""
	}
	var context map[string]string
	if err := json.Unmarshal([]byte(attr.StringValue()), &context); err != nil {
		return ""
	}
	return context["pubmed"]
}

func sortedKeys(m map[string]map[int64]map[int64][]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedInt64Keys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
