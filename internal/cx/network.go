package cx

import "sort"

// Declared attribute data types. These mirror the CX data model: a value is
// either a scalar string, a boolean, or a list of strings.
const (
	StringType       = "string"
	BooleanType      = "boolean"
	ListOfStringType = "list_of_string"
)

// CartesianLayoutAspect is the name of the opaque aspect holding node
// coordinates.
const CartesianLayoutAspect = "cartesianLayout"

type Node struct {
	ID         int64  `json:"@id"`
	Name       string `json:"n"`
	Represents string `json:"r,omitempty"`
}

type Edge struct {
	ID          int64  `json:"@id"`
	Source      int64  `json:"s"`
	Target      int64  `json:"t"`
	Interaction string `json:"i,omitempty"`
}

type Attribute struct {
	Name  string `json:"n"`
	Value any    `json:"v"`
	Type  string `json:"d,omitempty"`
}

// StringValue returns the attribute value as a scalar string, or "" when the
// value is not a string.
func (a *Attribute) StringValue() string {
	s, _ := a.Value.(string)
	return s
}

// BoolValue returns the attribute value as a boolean, or false when the value
// is not a boolean.
func (a *Attribute) BoolValue() bool {
	b, _ := a.Value.(bool)
	return b
}

// ListValue returns the attribute value as a list of strings. A scalar string
// value is returned as a one-element list.
func (a *Attribute) ListValue() []string {
	switch v := a.Value.(type) {
	case []string:
		return v
	case string:
		return []string{v}
	}
	return nil
}

type Coordinate struct {
	Node int64   `json:"node"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Network is an in-memory attributed multigraph. Nodes and edges carry named,
// typed attributes; the network itself carries attributes plus opaque aspects
// such as the cartesian layout.
type Network struct {
	name string

	nodeCounter int64
	edgeCounter int64

	nodes map[int64]*Node
	edges map[int64]*Edge

	nodeAttrs map[int64]map[string]*Attribute
	edgeAttrs map[int64]map[string]*Attribute
	netAttrs  map[string]*Attribute

	opaque map[string]any
}

func NewNetwork() *Network {
	return &Network{
		nodes:     make(map[int64]*Node),
		edges:     make(map[int64]*Edge),
		nodeAttrs: make(map[int64]map[string]*Attribute),
		edgeAttrs: make(map[int64]map[string]*Attribute),
		netAttrs:  make(map[string]*Attribute),
		opaque:    make(map[string]any),
	}
}

func (n *Network) Name() string        { return n.name }
func (n *Network) SetName(name string) { n.name = name }

func (n *Network) CreateNode(name, represents string) int64 {
	id := n.nodeCounter
	n.nodeCounter++
	n.nodes[id] = &Node{ID: id, Name: name, Represents: represents}
	return id
}

func (n *Network) CreateEdge(source, target int64, interaction string) int64 {
	id := n.edgeCounter
	n.edgeCounter++
	n.edges[id] = &Edge{ID: id, Source: source, Target: target, Interaction: interaction}
	return id
}

func (n *Network) Node(id int64) *Node { return n.nodes[id] }
func (n *Network) Edge(id int64) *Edge { return n.edges[id] }

func (n *Network) NodeCount() int { return len(n.nodes) }
func (n *Network) EdgeCount() int { return len(n.edges) }

// Nodes returns all nodes ordered by id.
func (n *Network) Nodes() []*Node {
	out := make([]*Node, 0, len(n.nodes))
	for _, node := range n.nodes {
		out = append(out, node)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns all edges ordered by id.
func (n *Network) Edges() []*Edge {
	out := make([]*Edge, 0, len(n.edges))
	for _, edge := range n.edges {
		out = append(out, edge)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RemoveEdge deletes an edge and all of its attributes in one step. Removing
// an unknown edge is a no-op.
func (n *Network) RemoveEdge(id int64) {
	delete(n.edges, id)
	delete(n.edgeAttrs, id)
}

func (n *Network) NodeAttribute(id int64, name string) *Attribute {
	return n.nodeAttrs[id][name]
}

func (n *Network) EdgeAttribute(id int64, name string) *Attribute {
	return n.edgeAttrs[id][name]
}

// NodeAttributes returns the attributes of a node ordered by name.
func (n *Network) NodeAttributes(id int64) []*Attribute {
	return sortedAttrs(n.nodeAttrs[id])
}

// EdgeAttributes returns the attributes of an edge ordered by name.
func (n *Network) EdgeAttributes(id int64) []*Attribute {
	return sortedAttrs(n.edgeAttrs[id])
}

// SetNodeAttribute sets a named, typed attribute on a node. When overwrite is
// false and the attribute already exists, the existing value is kept.
func (n *Network) SetNodeAttribute(id int64, name string, value any, atype string, overwrite bool) {
	setAttr(n.nodeAttrs, id, name, value, atype, overwrite)
}

// SetEdgeAttribute sets a named, typed attribute on an edge. When overwrite is
// false and the attribute already exists, the existing value is kept.
func (n *Network) SetEdgeAttribute(id int64, name string, value any, atype string, overwrite bool) {
	setAttr(n.edgeAttrs, id, name, value, atype, overwrite)
}

func (n *Network) RemoveNodeAttribute(id int64, name string) {
	delete(n.nodeAttrs[id], name)
}

func (n *Network) RemoveEdgeAttribute(id int64, name string) {
	delete(n.edgeAttrs[id], name)
}

func (n *Network) NetworkAttribute(name string) *Attribute {
	return n.netAttrs[name]
}

// NetworkAttributes returns all network-level attributes ordered by name.
func (n *Network) NetworkAttributes() []*Attribute {
	return sortedAttrs(n.netAttrs)
}

func (n *Network) SetNetworkAttribute(name string, value any, atype string) {
	n.netAttrs[name] = &Attribute{Name: name, Value: value, Type: atype}
}

// SetOpaqueAspect stores a named graph-level block of auxiliary data,
// replacing any previous value.
func (n *Network) SetOpaqueAspect(name string, value any) {
	n.opaque[name] = value
}

func (n *Network) OpaqueAspect(name string) any {
	return n.opaque[name]
}

// OpaqueAspectNames returns the names of all opaque aspects, sorted.
func (n *Network) OpaqueAspectNames() []string {
	names := make([]string, 0, len(n.opaque))
	for name := range n.opaque {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func setAttr(attrs map[int64]map[string]*Attribute, id int64, name string, value any, atype string, overwrite bool) {
	m := attrs[id]
	if m == nil {
		m = make(map[string]*Attribute)
		attrs[id] = m
	}
	if _, exists := m[name]; exists && !overwrite {
		return
	}
	m[name] = &Attribute{Name: name, Value: value, Type: atype}
}

func sortedAttrs(m map[string]*Attribute) []*Attribute {
	if len(m) == 0 {
		return nil
	}
	out := make([]*Attribute, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
