package ndex

import (
	"encoding/json"
	"fmt"

	"github.com/rpillich/ndexsignorloader/internal/cx"
)

type aspectCount struct {
	Name             string `json:"name"`
	ElementCount     int    `json:"elementCount"`
	ConsistencyGroup int    `json:"consistencyGroup"`
}

type elementAttribute struct {
	PropertyOf int64  `json:"po"`
	Name       string `json:"n"`
	Value      any    `json:"v"`
	Type       string `json:"d,omitempty"`
}

// MarshalCX serializes a network into a raw CX document: a JSON array of
// single-key aspect fragments wrapped by numberVerification, metaData and a
// terminal status aspect.
func MarshalCX(net *cx.Network) ([]byte, error) {
	if net == nil {
		return nil, fmt.Errorf("network is nil")
	}

	nodes := net.Nodes()
	edges := net.Edges()

	var nodeAttrs []elementAttribute
	for _, node := range nodes {
		for _, attr := range net.NodeAttributes(node.ID) {
			nodeAttrs = append(nodeAttrs, elementAttribute{
				PropertyOf: node.ID, Name: attr.Name, Value: attr.Value, Type: cxType(attr.Type),
			})
		}
	}
	var edgeAttrs []elementAttribute
	for _, edge := range edges {
		for _, attr := range net.EdgeAttributes(edge.ID) {
			edgeAttrs = append(edgeAttrs, elementAttribute{
				PropertyOf: edge.ID, Name: attr.Name, Value: attr.Value, Type: cxType(attr.Type),
			})
		}
	}

	var netAttrs []map[string]any
	if net.Name() != "" {
		netAttrs = append(netAttrs, map[string]any{"n": "name", "v": net.Name()})
	}
	for _, attr := range net.NetworkAttributes() {
		entry := map[string]any{"n": attr.Name, "v": attr.Value}
		if t := cxType(attr.Type); t != "" {
			entry["d"] = t
		}
		netAttrs = append(netAttrs, entry)
	}

	aspects := []struct {
		name     string
		elements any
		count    int
	}{
		{"nodes", nodes, len(nodes)},
		{"edges", edges, len(edges)},
		{"nodeAttributes", nodeAttrs, len(nodeAttrs)},
		{"edgeAttributes", edgeAttrs, len(edgeAttrs)},
		{"networkAttributes", netAttrs, len(netAttrs)},
	}

	var meta []aspectCount
	var fragments []map[string]any
	for _, aspect := range aspects {
		if aspect.count == 0 {
			continue
		}
		meta = append(meta, aspectCount{Name: aspect.name, ElementCount: aspect.count, ConsistencyGroup: 1})
		fragments = append(fragments, map[string]any{aspect.name: aspect.elements})
	}
	for _, name := range net.OpaqueAspectNames() {
		elements := net.OpaqueAspect(name)
		meta = append(meta, aspectCount{Name: name, ElementCount: opaqueLen(elements), ConsistencyGroup: 1})
		fragments = append(fragments, map[string]any{name: elements})
	}

	document := []any{
		map[string]any{"numberVerification": []map[string]any{{"longNumber": int64(281474976710655)}}},
		map[string]any{"metaData": meta},
	}
	for _, fragment := range fragments {
		document = append(document, fragment)
	}
	document = append(document, map[string]any{
		"status": []map[string]any{{"error": "", "success": true}},
	})
	return json.Marshal(document)
}

// cxType maps the internal scalar string type onto CX's implicit default so
// plain strings carry no "d" field, matching what NDEx itself emits.
func cxType(t string) string {
	if t == cx.StringType {
		return ""
	}
	return t
}

func opaqueLen(elements any) int {
	data, err := json.Marshal(elements)
	if err != nil {
		return 1
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return 1
	}
	return len(list)
}

// ExtractAspect pulls one named aspect's elements out of a raw CX document.
// It returns nil when the aspect is absent.
func ExtractAspect(rawCX []byte, name string) (json.RawMessage, error) {
	var document []map[string]json.RawMessage
	if err := json.Unmarshal(rawCX, &document); err != nil {
		return nil, fmt.Errorf("parsing CX document: %w", err)
	}
	for _, fragment := range document {
		if elements, ok := fragment[name]; ok {
			return elements, nil
		}
	}
	return nil, nil
}
