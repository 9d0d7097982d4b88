package physics

import (
	"math"

	"github.com/ByteArena/box2d"
)

// MaxPolygonVertices is the Box2D per-fixture vertex limit.
const MaxPolygonVertices = box2d.B2_maxPolygonVertices

const (
	weldGrid = 1e4 // vertices closer than 1/weldGrid share a key
	epsilon  = 1e-9
)

type vkey struct{ x, y int64 }

func keyOf(p box2d.B2Vec2) vkey {
	return vkey{int64(math.Round(p.X * weldGrid)), int64(math.Round(p.Y * weldGrid))}
}

type edge struct {
	from, to vkey
	dead     bool
	used     bool
}

// BoundaryLoops returns the outer loops of a triangle soup. A directed edge
// ab cancels against ba, so edges shared by two triangles disappear and only
// the boundary remains. Vertices are welded by position, not index. Loops
// come back counter-clockwise.
func BoundaryLoops(points []box2d.B2Vec2, indices []int) [][]box2d.B2Vec2 {
	pos := make(map[vkey]box2d.B2Vec2, len(points))
	var edges []edge
	index := make(map[[2]vkey]int)

	add := func(a, b vkey) {
		if i, ok := index[[2]vkey{b, a}]; ok && !edges[i].dead {
			edges[i].dead = true
			delete(index, [2]vkey{b, a})
			return
		}
		index[[2]vkey{a, b}] = len(edges)
		edges = append(edges, edge{from: a, to: b})
	}

	for t := 0; t+2 < len(indices); t += 3 {
		var k [3]vkey
		ok := true
		for c := 0; c < 3; c++ {
			i := indices[t+c]
			if i < 0 || i >= len(points) {
				ok = false
				break
			}
			k[c] = keyOf(points[i])
			if _, seen := pos[k[c]]; !seen {
				pos[k[c]] = points[i]
			}
		}
		if !ok || k[0] == k[1] || k[1] == k[2] || k[2] == k[0] {
			continue
		}
		add(k[0], k[1])
		add(k[1], k[2])
		add(k[2], k[0])
	}

	outgoing := make(map[vkey][]int)
	for i := range edges {
		if !edges[i].dead {
			outgoing[edges[i].from] = append(outgoing[edges[i].from], i)
		}
	}

	var loops [][]box2d.B2Vec2
	for i := range edges {
		if edges[i].dead || edges[i].used {
			continue
		}
		start := edges[i].from
		edges[i].used = true
		loop := []box2d.B2Vec2{pos[start]}
		cur := edges[i].to
		closed := false
		for guard := 0; guard <= len(edges); guard++ {
			if cur == start {
				closed = true
				break
			}
			loop = append(loop, pos[cur])
			next := -1
			for _, e := range outgoing[cur] {
				if !edges[e].used {
					next = e
					break
				}
			}
			if next < 0 {
				break
			}
			edges[next].used = true
			cur = edges[next].to
		}
		if !closed {
			continue
		}
		loop = dropCollinear(loop)
		if len(loop) < 3 {
			continue
		}
		area := signedArea(loop)
		if math.Abs(area) < epsilon {
			continue
		}
		if area < 0 {
			reverse(loop)
		}
		loops = append(loops, loop)
	}
	return loops
}

// ConvexPieces splits a counter-clockwise simple polygon into convex
// polygons of at most MaxPolygonVertices vertices.
func ConvexPieces(loop []box2d.B2Vec2) [][]box2d.B2Vec2 {
	if len(loop) < 3 {
		return nil
	}
	if len(loop) <= MaxPolygonVertices && isConvex(loop) {
		return [][]box2d.B2Vec2{append([]box2d.B2Vec2(nil), loop...)}
	}

	polys := triangulate(loop)
	for merged := true; merged; {
		merged = false
	scan:
		for i := 0; i < len(polys); i++ {
			for j := i + 1; j < len(polys); j++ {
				if m, ok := mergeConvex(polys[i], polys[j]); ok {
					polys[i] = m
					polys = append(polys[:j], polys[j+1:]...)
					merged = true
					break scan
				}
			}
		}
	}
	return polys
}

// Decompose is BoundaryLoops followed by ConvexPieces on every loop.
func Decompose(points []box2d.B2Vec2, indices []int) [][]box2d.B2Vec2 {
	var out [][]box2d.B2Vec2
	for _, loop := range BoundaryLoops(points, indices) {
		out = append(out, ConvexPieces(loop)...)
	}
	return out
}

func triangulate(loop []box2d.B2Vec2) [][]box2d.B2Vec2 {
	idx := make([]int, len(loop))
	for i := range idx {
		idx[i] = i
	}
	var tris [][]box2d.B2Vec2
	for len(idx) > 3 {
		ear := -1
		n := len(idx)
		for i := 0; i < n; i++ {
			a, b, c := loop[idx[(i+n-1)%n]], loop[idx[i]], loop[idx[(i+1)%n]]
			if cross(a, b, c) <= epsilon {
				continue
			}
			inside := false
			for _, k := range idx {
				p := loop[k]
				if p == a || p == b || p == c {
					continue
				}
				if inTriangle(p, a, b, c) {
					inside = true
					break
				}
			}
			if !inside {
				ear = i
				tris = append(tris, []box2d.B2Vec2{a, b, c})
				break
			}
		}
		if ear < 0 {
			// self-intersecting or degenerate remainder
			return tris
		}
		idx = append(idx[:ear], idx[ear+1:]...)
	}
	tri := []box2d.B2Vec2{loop[idx[0]], loop[idx[1]], loop[idx[2]]}
	if cross(tri[0], tri[1], tri[2]) > epsilon {
		tris = append(tris, tri)
	}
	return tris
}

// mergeConvex joins a and b across a shared edge when the union stays convex
// and within the vertex limit.
func mergeConvex(a, b []box2d.B2Vec2) ([]box2d.B2Vec2, bool) {
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		u, v := a[i], a[(i+1)%na]
		for j := 0; j < nb; j++ {
			if b[j] != v || b[(j+1)%nb] != u {
				continue
			}
			m := make([]box2d.B2Vec2, 0, na+nb-2)
			for k := 0; k < na; k++ {
				m = append(m, a[(i+1+k)%na])
			}
			for k := 2; k < nb; k++ {
				m = append(m, b[(j+k)%nb])
			}
			m = dropCollinear(m)
			if len(m) > MaxPolygonVertices || !isConvex(m) {
				return nil, false
			}
			return m, true
		}
	}
	return nil, false
}

func cross(a, b, c box2d.B2Vec2) float64 {
	return (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
}

func isConvex(poly []box2d.B2Vec2) bool {
	n := len(poly)
	for i := 0; i < n; i++ {
		if cross(poly[i], poly[(i+1)%n], poly[(i+2)%n]) < -epsilon {
			return false
		}
	}
	return true
}

func inTriangle(p, a, b, c box2d.B2Vec2) bool {
	return cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0
}

func signedArea(poly []box2d.B2Vec2) float64 {
	var s float64
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		s += p.X*q.Y - q.X*p.Y
	}
	return s / 2
}

// PolygonArea returns the unsigned area of poly.
func PolygonArea(poly []box2d.B2Vec2) float64 {
	return math.Abs(signedArea(poly))
}

func dropCollinear(poly []box2d.B2Vec2) []box2d.B2Vec2 {
	for changed := true; changed && len(poly) >= 3; {
		changed = false
		n := len(poly)
		for i := 0; i < n; i++ {
			if math.Abs(cross(poly[(i+n-1)%n], poly[i], poly[(i+1)%n])) <= epsilon {
				poly = append(poly[:i:i], poly[i+1:]...)
				changed = true
				break
			}
		}
	}
	return poly
}

func reverse(poly []box2d.B2Vec2) {
	for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
		poly[i], poly[j] = poly[j], poly[i]
	}
}
