package grpcpeer

import (
	"context"
	"fmt"
	"sync"

	"chordring/internal/chord"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Dialer is a chord.PeerDialer backed by real gRPC connections, pooled
// per endpoint so repeated lookups against the same peer reuse one
// *grpc.ClientConn. Grounded on the teacher's client pool
// (cmd/node/main.go's client2.New / DialEphemeral / GetFromPool), scaled
// down to the single concern NodeService needs: handing back a
// chord.PeerClient per endpoint.
type Dialer struct {
	dialOpts []grpc.DialOption

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// NewDialer builds a Dialer. Extra dial options (TLS credentials,
// otelgrpc stats handlers) are appended after the default insecure
// transport credentials.
func NewDialer(extraOpts ...grpc.DialOption) *Dialer {
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, extraOpts...)
	return &Dialer{dialOpts: opts, conns: make(map[string]*grpc.ClientConn)}
}

// Dial implements chord.PeerDialer.
func (d *Dialer) Dial(endpoint string) (chord.PeerClient, error) {
	d.mu.Lock()
	conn, ok := d.conns[endpoint]
	d.mu.Unlock()
	if ok {
		return &client{conn: conn, endpoint: endpoint}, nil
	}

	conn, err := grpc.NewClient(endpoint, d.dialOpts...)
	if err != nil {
		return nil, chord.NewConnectionFailedError(chord.NodeHandle{Endpoint: endpoint}, err)
	}

	d.mu.Lock()
	d.conns[endpoint] = conn
	d.mu.Unlock()

	return &client{conn: conn, endpoint: endpoint}, nil
}

// Close tears down every pooled connection.
func (d *Dialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var firstErr error
	for endpoint, conn := range d.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", endpoint, err)
		}
	}
	d.conns = make(map[string]*grpc.ClientConn)
	return firstErr
}

type client struct {
	conn     *grpc.ClientConn
	endpoint string
}

func (c *client) invoke(ctx context.Context, method string, req, resp *structpb.Struct) error {
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		if status.Code(err) == codes.Unavailable {
			return chord.NewConnectionFailedError(chord.NodeHandle{Endpoint: c.endpoint}, err)
		}
		return chord.NewUnexpectedClientError(err.Error(), err)
	}
	return nil
}

func (c *client) FindSuccessor(ctx context.Context, id uint64) (chord.NodeHandle, error) {
	resp := new(structpb.Struct)
	if err := c.invoke(ctx, methodFindSuccessor, idRequest(id), resp); err != nil {
		return chord.NodeHandle{}, err
	}
	return structToHandle(resp), nil
}

func (c *client) Successor(ctx context.Context) (chord.NodeHandle, error) {
	resp := new(structpb.Struct)
	if err := c.invoke(ctx, methodSuccessor, emptyStruct(), resp); err != nil {
		return chord.NodeHandle{}, err
	}
	return structToHandle(resp), nil
}

func (c *client) Predecessor(ctx context.Context) (chord.NodeHandle, bool, error) {
	resp := new(structpb.Struct)
	if err := c.invoke(ctx, methodPredecessor, emptyStruct(), resp); err != nil {
		return chord.NodeHandle{}, false, err
	}
	handle, ok := parsePredecessorResponse(resp)
	return handle, ok, nil
}

func (c *client) SuccessorList(ctx context.Context) ([]chord.NodeHandle, error) {
	resp := new(structpb.Struct)
	if err := c.invoke(ctx, methodSuccessorList, emptyStruct(), resp); err != nil {
		return nil, err
	}
	return parseSuccessorListResponse(resp), nil
}

func (c *client) Notify(ctx context.Context, candidate chord.NodeHandle) error {
	resp := new(structpb.Struct)
	return c.invoke(ctx, methodNotify, handleToStruct(candidate), resp)
}

func (c *client) Ping(ctx context.Context) error {
	resp := new(structpb.Struct)
	return c.invoke(ctx, methodPing, emptyStruct(), resp)
}
