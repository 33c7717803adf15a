package rowan

// registry maps node identifiers back to node instances for the stage that
// owns them. Each stage carries its own registry so independent scene
// graphs never collide; there is no ambient global table.
//
// Nodes enter the registry when their backend element is created and leave
// it when the element is severed, so a lookup succeeds exactly while the
// node is live on the surface.
type registry struct {
	nodes map[uint32]*Node
}

func newRegistry() *registry {
	return &registry{nodes: make(map[uint32]*Node)}
}

func (r *registry) add(n *Node) {
	r.nodes[n.NodeID()] = n
}

func (r *registry) remove(id uint32) {
	if id != 0 {
		delete(r.nodes, id)
	}
}

func (r *registry) lookup(id uint32) *Node {
	return r.nodes[id]
}

func (r *registry) clear() {
	clear(r.nodes)
}
