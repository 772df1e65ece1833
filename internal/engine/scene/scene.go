// Package scene holds the viewer's scene graph and builds its base content:
// lights, the panorama enclosure and the placeholder shown while no mesh is
// installed. It allocates CPU data only; GPU upload goes through gpu.Device.
package scene

import (
	"github.com/Faultbox/relive/internal/engine/gpu"
	"github.com/Faultbox/relive/internal/engine/lighting"
	"github.com/Faultbox/relive/pkg/math"
)

// Scene is the set of lights and nodes rendered each frame.
type Scene struct {
	Lights []lighting.Light
	Clear  [3]float32

	nodes []*Node
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add attaches n. Adding a node twice is a no-op.
func (s *Scene) Add(n *Node) {
	if n == nil || s.Contains(n) {
		return
	}
	s.nodes = append(s.nodes, n)
}

// Remove detaches n and reports whether it was attached. It does not
// release the node.
func (s *Scene) Remove(n *Node) bool {
	for i, m := range s.nodes {
		if m == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether n is attached.
func (s *Scene) Contains(n *Node) bool {
	for _, m := range s.nodes {
		if m == n {
			return true
		}
	}
	return false
}

// Nodes returns the attached nodes in draw order.
func (s *Scene) Nodes() []*Node {
	return append([]*Node(nil), s.nodes...)
}

// Len returns the number of attached nodes.
func (s *Scene) Len() int { return len(s.nodes) }

// ReleaseAll releases and detaches every node.
func (s *Scene) ReleaseAll() {
	for _, n := range s.nodes {
		n.Release()
	}
	s.nodes = nil
}

// Frame flattens the scene into a draw list. Nodes that are not uploaded
// are skipped.
func (s *Scene) Frame(view, proj math.Mat4, eye math.Vec3) *gpu.Frame {
	f := &gpu.Frame{
		View:       view,
		Projection: proj,
		Eye:        eye,
		Clear:      s.Clear,
		Lights:     s.Lights,
		Bounds:     math.EmptyBox3(),
	}
	for _, n := range s.nodes {
		f.Items = n.appendDrawItems(f.Items, &f.Bounds)
	}
	return f
}
