package orchestrator

import (
	"sync"
	"sync/atomic"
)

// NodePool is an ordered set of NodeClients load-balanced by round-robin.
type NodePool struct {
	mu    sync.RWMutex
	nodes []*NodeClient
	cur   uint64
}

// NewNodePool creates an empty pool.
func NewNodePool() *NodePool {
	return &NodePool{nodes: make([]*NodeClient, 0, 4)}
}

// Add appends a node to the pool.
func (p *NodePool) Add(node *NodeClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nodes = append(p.nodes, node)
}

// Remove drops a node by identity match. No-op if not present.
func (p *NodePool) Remove(node *NodeClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, n := range p.nodes {
		if n.Equal(node) {
			p.nodes = append(p.nodes[:i], p.nodes[i+1:]...)
			return
		}
	}
}

// Len returns the number of nodes currently in the pool.
func (p *NodePool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.nodes)
}

// Acquire fetch-and-increments the cursor and returns the node at the
// pre-increment position modulo the pool length, giving every concurrent
// caller a distinct slot modulo len. Fails with ErrNoNodes on an empty
// pool.
func (p *NodePool) Acquire() (*NodeClient, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := len(p.nodes)
	if n == 0 {
		return nil, ErrNoNodes
	}

	slot := atomic.AddUint64(&p.cur, 1) - 1
	return p.nodes[slot%uint64(n)], nil
}

// Snapshot returns a copy of the current node list, for iteration without
// holding the pool lock across any suspension point.
func (p *NodePool) Snapshot() []*NodeClient {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*NodeClient, len(p.nodes))
	copy(out, p.nodes)
	return out
}
