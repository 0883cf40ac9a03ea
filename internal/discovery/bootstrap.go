// Package discovery finds and advertises the peers a chord node uses
// to join a ring, grounded on the teacher's referenced internal/bootstrap
// package (cmd/node/main.go: bootstrap.Bootstrap, bootstrap.NewStaticBootstrap,
// bootstrap.NewRoute53Bootstrap) — rebuilt here since that package was
// not itself part of the retrieval pack, generalized from KoordeDHT's
// domain.Node membership list to the spec's plain endpoint strings (a
// NodeService only needs an endpoint to Join against; its own hash
// derives the id).
package discovery

import "context"

// Bootstrap discovers candidate peers to join against, and advertises
// this node's own presence once it has joined. This is entirely an
// integrator concern (spec §1): the engine never imports this package.
type Bootstrap interface {
	// Discover returns zero or more candidate peer endpoints. An empty
	// result means "no existing ring was found" — the caller should
	// create a new one rather than join.
	Discover(ctx context.Context) ([]string, error)
	// Register advertises self as a member, once it has joined (or
	// created) a ring.
	Register(ctx context.Context, self string) error
	// Deregister removes self's advertisement, on graceful shutdown.
	Deregister(ctx context.Context, self string) error
}

// StaticBootstrap returns a fixed, operator-supplied peer list. It
// never registers or deregisters anything, since the list is not a
// directory the node can update.
type StaticBootstrap struct {
	peers []string
}

// NewStaticBootstrap builds a Bootstrap over a fixed peer list.
func NewStaticBootstrap(peers []string) *StaticBootstrap {
	return &StaticBootstrap{peers: peers}
}

func (b *StaticBootstrap) Discover(ctx context.Context) ([]string, error) {
	return b.peers, nil
}

func (b *StaticBootstrap) Register(ctx context.Context, self string) error {
	return nil
}

func (b *StaticBootstrap) Deregister(ctx context.Context, self string) error {
	return nil
}
