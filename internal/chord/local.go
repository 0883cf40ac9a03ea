package chord

import (
	"context"
	"fmt"
	"sync"
)

// LocalRegistry dispatches PeerClient calls directly to in-process
// NodeServices by endpoint, skipping any wire transport. Grounded on
// the teacher's rpcClientDispatch (ollelogdahl-concord/rpc.go), which
// plays the identical role against the same rpcHandler the grpc client
// targets, rather than a wire transport. Used by integration tests
// that run several NodeServices in one process and by single-process
// deployments that want zero-RPC-overhead loopback delivery.
type LocalRegistry struct {
	mu    sync.RWMutex
	peers map[string]*NodeService
}

// NewLocalRegistry builds an empty registry.
func NewLocalRegistry() *LocalRegistry {
	return &LocalRegistry{peers: make(map[string]*NodeService)}
}

// Register makes svc reachable at its own endpoint.
func (r *LocalRegistry) Register(svc *NodeService) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[svc.Self().Endpoint] = svc
}

// Unregister removes endpoint, simulating a permanently departed node.
func (r *LocalRegistry) Unregister(endpoint string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, endpoint)
}

// Dial implements PeerDialer by looking up endpoint in the registry.
func (r *LocalRegistry) Dial(endpoint string) (PeerClient, error) {
	r.mu.RLock()
	svc, ok := r.peers[endpoint]
	r.mu.RUnlock()
	if !ok {
		return nil, NewConnectionFailedError(NodeHandle{Endpoint: endpoint}, fmt.Errorf("no node registered at %s", endpoint))
	}
	return &localClient{registry: r, target: svc}, nil
}

// localClient is a PeerClient that calls straight into a NodeService's
// methods, translating its return shapes into the PeerClient contract.
type localClient struct {
	registry *LocalRegistry
	target   *NodeService
}

func (c *localClient) FindSuccessor(ctx context.Context, id uint64) (NodeHandle, error) {
	result, err := c.target.FindSuccessor(ctx, id)
	if err != nil {
		return NodeHandle{}, NewUnexpectedClientError("find_successor failed", err)
	}
	return result, nil
}

func (c *localClient) Successor(ctx context.Context) (NodeHandle, error) {
	return c.target.Successor(), nil
}

func (c *localClient) Predecessor(ctx context.Context) (NodeHandle, bool, error) {
	pred, ok := c.target.Predecessor()
	return pred, ok, nil
}

func (c *localClient) SuccessorList(ctx context.Context) ([]NodeHandle, error) {
	return c.target.Store().SuccessorList(), nil
}

func (c *localClient) Notify(ctx context.Context, candidate NodeHandle) error {
	c.target.Notify(candidate)
	return nil
}

func (c *localClient) Ping(ctx context.Context) error {
	c.registry.mu.RLock()
	_, ok := c.registry.peers[c.target.Self().Endpoint]
	c.registry.mu.RUnlock()
	if !ok {
		return NewConnectionFailedError(c.target.Self(), fmt.Errorf("node no longer registered"))
	}
	return nil
}
