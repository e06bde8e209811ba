// Package loader orchestrates a full SIGNOR load: it converts downloaded
// pathway text into networks, normalizes them, and pushes the result to NDEx.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
)

// PropertyColumn maps one source column onto a network attribute.
type PropertyColumn struct {
	ColumnName    string `json:"column_name"`
	AttributeName string `json:"attribute_name"`
	DataType      string `json:"data_type,omitempty"`
	ValuePrefix   string `json:"value_prefix,omitempty"`
}

// NodePlan describes how node identity and attributes are read from a row.
type NodePlan struct {
	IDColumn        string           `json:"id_column"`
	NodeName        string           `json:"node_name"`
	IDPrefix        string           `json:"id_prefix,omitempty"`
	PropertyColumns []PropertyColumn `json:"property_columns,omitempty"`
}

// EdgePlan describes the interaction column and edge attribute columns.
type EdgePlan struct {
	DefaultPredicate  string           `json:"default_predicate,omitempty"`
	PredicateIDColumn string           `json:"predicate_id_column,omitempty"`
	PropertyColumns   []PropertyColumn `json:"property_columns,omitempty"`
}

// LoadPlan is the column mapping used to turn SIGNOR rows into a network.
// Context is the namespace-to-URL map published on every converted network
// as its @context attribute; the edge collapser reads the pubmed entry to
// build citation hyperlinks.
type LoadPlan struct {
	Context    map[string]string `json:"context,omitempty"`
	SourcePlan NodePlan          `json:"source_plan"`
	TargetPlan NodePlan          `json:"target_plan"`
	EdgePlan   EdgePlan          `json:"edge_plan"`
}

// ParseLoadPlan parses a load plan from JSON.
func ParseLoadPlan(data []byte) (*LoadPlan, error) {
	var plan LoadPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing load plan: %w", err)
	}
	return &plan, nil
}

// LoadLoadPlan reads a load plan from a JSON file.
func LoadLoadPlan(path string) (*LoadPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading load plan: %w", err)
	}
	plan, err := ParseLoadPlan(data)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", path, err)
	}
	return plan, nil
}

// WithoutLocationColumns returns a copy of the plan with the regulator and
// target location columns removed. The full species networks are too large to
// lay out by compartment, so their nodes carry no location attribute.
func (p *LoadPlan) WithoutLocationColumns() *LoadPlan {
	clone := *p
	clone.SourcePlan.PropertyColumns = dropColumn(p.SourcePlan.PropertyColumns, "REGULATOR_LOCATION", "location")
	clone.TargetPlan.PropertyColumns = dropColumn(p.TargetPlan.PropertyColumns, "TARGET_LOCATION", "location")
	return &clone
}

func dropColumn(columns []PropertyColumn, columnName, attributeName string) []PropertyColumn {
	var kept []PropertyColumn
	for _, col := range columns {
		if col.ColumnName == columnName && col.AttributeName == attributeName {
			continue
		}
		kept = append(kept, col)
	}
	return kept
}
