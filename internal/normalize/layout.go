package normalize

import (
	"math"
	"math/rand"
	"sort"

	"github.com/rpillich/ndexsignorloader/internal/cx"
)

// Compartment categories that anchor the layout. Each category owns a fixed
// vertical band; the empty string is the unlabeled band produced from
// phenotype placeholder locations.
const (
	Extracellular = "extracellular"
	Receptor      = "receptor"
	Factor        = "factor"
	unlabeled     = ""
)

// anchorOrder fixes the processing order of the synthetic anchor nodes.
var anchorOrder = []string{Extracellular, Receptor, Cytoplasm, Factor, unlabeled}

// SpringLayoutUpdator computes 2-D node coordinates with a seeded
// force-directed placement. Five synthetic anchor nodes pin the compartment
// bands along the vertical axis: extracellular lowest, then receptor,
// cytoplasm at the origin, factor and unlabeled above. Real nodes with a
// location are tethered to their band's anchor by a weighted auxiliary edge
// that exists only for the duration of the solve.
//
// The generator is instance scoped and reseeded on every run, so identical
// topology always produces bit-identical coordinates.
type SpringLayoutUpdator struct {
	scale          float64
	iterations     int
	seed           int64
	locationWeight float64
}

func NewSpringLayoutUpdator() *SpringLayoutUpdator {
	return &SpringLayoutUpdator{
		scale:          500.0,
		iterations:     10,
		seed:           10,
		locationWeight: 5.0,
	}
}

func (u *SpringLayoutUpdator) Description() string {
	return "Applies Spring layout to network"
}

type layoutNode struct {
	id     int64 // real node id, valid when anchor is false
	anchor bool
	x, y   float64
}

type layoutEdge struct {
	a, b   int
	weight float64
}

func (u *SpringLayoutUpdator) bandY(category string) (float64, bool) {
	switch category {
	case Extracellular:
		return -u.scale, true
	case Receptor:
		return -u.scale / 2.0, true
	case Cytoplasm:
		return 0.0, true
	case Factor:
		return u.scale / 2.0, true
	case unlabeled:
		return u.scale, true
	}
	return 0, false
}

func (u *SpringLayoutUpdator) Update(net *cx.Network) []string {
	if net == nil {
		return []string{networkIsNil}
	}

	rng := rand.New(rand.NewSource(u.seed))

	nodes, edges := u.buildAuxiliaryGraph(net, rng)
	numReal := net.NodeCount()

	// stiffness grows and the bounding scale shrinks with node count
	k := 1000.0 + 20.0*float64(numReal)
	bound := u.scale - float64(numReal)
	u.solve(nodes, edges, k, bound)

	coords := make([]cx.Coordinate, 0, numReal)
	for _, ln := range nodes {
		if ln.anchor {
			continue
		}
		coords = append(coords, cx.Coordinate{Node: ln.id, X: ln.x, Y: ln.y})
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Node < coords[j].Node })
	net.SetOpaqueAspect(cx.CartesianLayoutAspect, coords)
	return nil
}

// buildAuxiliaryGraph assembles the solver input: every real node, the five
// anchors, the real edges, and one biasing edge from each located node to its
// band anchor. Real nodes draw their horizontal start from the seeded
// generator in id order.
func (u *SpringLayoutUpdator) buildAuxiliaryGraph(net *cx.Network, rng *rand.Rand) ([]layoutNode, []layoutEdge) {
	realNodes := net.Nodes()
	nodes := make([]layoutNode, 0, len(realNodes)+len(anchorOrder))
	indexByID := make(map[int64]int, len(realNodes))
	anchorIndex := make(map[string]int, len(anchorOrder))

	category := make(map[int64]string)
	for _, node := range realNodes {
		ln := layoutNode{id: node.ID}
		attr := net.NodeAttribute(node.ID, LocationAttr)
		if attr != nil {
			if y, ok := u.bandY(attr.StringValue()); ok {
				category[node.ID] = attr.StringValue()
				ln.x = u.randomPosition(rng)
				ln.y = y
			} else {
				ln.x = u.randomPosition(rng)
				ln.y = u.randomPosition(rng)
			}
		} else {
			ln.x = u.randomPosition(rng)
			ln.y = u.randomPosition(rng)
		}
		indexByID[node.ID] = len(nodes)
		nodes = append(nodes, ln)
	}
	for _, name := range anchorOrder {
		y, _ := u.bandY(name)
		anchorIndex[name] = len(nodes)
		nodes = append(nodes, layoutNode{anchor: true, x: 0.0, y: y})
	}

	var edges []layoutEdge
	for _, edge := range net.Edges() {
		s, okS := indexByID[edge.Source]
		t, okT := indexByID[edge.Target]
		if okS && okT {
			edges = append(edges, layoutEdge{a: s, b: t, weight: 1.0})
		}
	}
	for _, node := range realNodes {
		if cat, ok := category[node.ID]; ok {
			edges = append(edges, layoutEdge{
				a:      indexByID[node.ID],
				b:      anchorIndex[cat],
				weight: u.locationWeight,
			})
		}
	}
	return nodes, edges
}

func (u *SpringLayoutUpdator) randomPosition(rng *rand.Rand) float64 {
	return -u.scale + rng.Float64()*(2.0*u.scale)
}

// solve runs Fruchterman-Reingold iterations with a cooling displacement cap.
// The cap keeps nodes near their compartment bands so that band ordering
// survives the solve.
func (u *SpringLayoutUpdator) solve(nodes []layoutNode, edges []layoutEdge, k, bound float64) {
	n := len(nodes)
	if n == 0 {
		return
	}
	dispX := make([]float64, n)
	dispY := make([]float64, n)

	temperature := 0.05 * u.scale
	cooling := temperature / float64(u.iterations+1)

	for iter := 0; iter < u.iterations; iter++ {
		for i := range dispX {
			dispX[i] = 0
			dispY[i] = 0
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := nodes[i].x - nodes[j].x
				dy := nodes[i].y - nodes[j].y
				dist := math.Max(math.Hypot(dx, dy), 0.01)
				force := k * k / dist
				dispX[i] += dx / dist * force
				dispY[i] += dy / dist * force
				dispX[j] -= dx / dist * force
				dispY[j] -= dy / dist * force
			}
		}

		for _, e := range edges {
			dx := nodes[e.a].x - nodes[e.b].x
			dy := nodes[e.a].y - nodes[e.b].y
			dist := math.Max(math.Hypot(dx, dy), 0.01)
			force := dist * dist / k * e.weight
			dispX[e.a] -= dx / dist * force
			dispY[e.a] -= dy / dist * force
			dispX[e.b] += dx / dist * force
			dispY[e.b] += dy / dist * force
		}

		for i := 0; i < n; i++ {
			length := math.Hypot(dispX[i], dispY[i])
			if length <= 0 {
				continue
			}
			limited := math.Min(length, temperature)
			nodes[i].x += dispX[i] / length * limited
			nodes[i].y += dispY[i] / length * limited
			nodes[i].x = clamp(nodes[i].x, -bound, bound)
			nodes[i].y = clamp(nodes[i].y, -bound, bound)
		}
		temperature -= cooling
	}
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return v
	}
	return math.Min(math.Max(v, lo), hi)
}
