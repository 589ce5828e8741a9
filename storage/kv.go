package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/sintology/instance"
)

// DefaultBucket is the KV bucket holding the instance graph.
const DefaultBucket = "SINTOLOGY_GRAPH"

// Key layout inside the bucket.
const (
	nodePrefix = "node."
	edgePrefix = "edge."
	orderKey   = "meta.order"
)

// bucket is the part of jetstream.KeyValue the store needs.
type bucket interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// order records node and edge ids in graph order, since KV keys are unordered.
type order struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// KVStore keeps the instance graph in a NATS JetStream KV bucket, one key
// per node and edge.
type KVStore struct {
	kv bucket
	nc *nats.Conn
}

// NewKVStore opens or creates the named bucket on js.
func NewKVStore(ctx context.Context, js jetstream.JetStream, name string) (*KVStore, error) {
	kv, err := getOrCreateBucket(ctx, js, name)
	if err != nil {
		return nil, fmt.Errorf("create graph bucket: %w", err)
	}
	return &KVStore{kv: kv}, nil
}

// DialKVStore connects to the NATS server at url and opens the bucket.
// Close releases the connection.
func DialKVStore(ctx context.Context, url, name string) (*KVStore, error) {
	nc, err := nats.Connect(url, nats.Name("sintology"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}
	s, err := NewKVStore(ctx, js, name)
	if err != nil {
		nc.Close()
		return nil, err
	}
	s.nc = nc
	return s, nil
}

// Close drains the connection opened by DialKVStore.
func (s *KVStore) Close() error {
	if s.nc == nil {
		return nil
	}
	return s.nc.Drain()
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	if name == "" {
		name = DefaultBucket
	}
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Sintology instance graph",
		History:     5,
	})
}

// Load reads the graph. An empty bucket is an empty graph.
func (s *KVStore) Load(ctx context.Context) (*instance.Graph, error) {
	g := instance.NewGraph()

	var ord order
	if err := s.getJSON(ctx, orderKey, &ord); err != nil {
		if errors.Is(err, ErrNotFound) {
			return g, nil
		}
		return nil, err
	}

	for _, id := range ord.Nodes {
		var n instance.Node
		if err := s.getJSON(ctx, nodePrefix+id, &n); err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		g.Nodes = append(g.Nodes, n)
	}
	for _, id := range ord.Edges {
		var e instance.Edge
		if err := s.getJSON(ctx, edgePrefix+id, &e); err != nil {
			return nil, fmt.Errorf("edge %s: %w", id, err)
		}
		g.Edges = append(g.Edges, e)
	}
	return g, nil
}

// Save writes every node and edge, then the order record, then removes
// entries no longer in g.
func (s *KVStore) Save(ctx context.Context, g *instance.Graph) error {
	live := make(map[string]bool, len(g.Nodes)+len(g.Edges)+1)
	ord := order{Nodes: make([]string, 0, len(g.Nodes)), Edges: make([]string, 0, len(g.Edges))}

	for _, n := range g.Nodes {
		if err := s.putJSON(ctx, nodePrefix+n.ID, n); err != nil {
			return err
		}
		live[nodePrefix+n.ID] = true
		ord.Nodes = append(ord.Nodes, n.ID)
	}
	for _, e := range g.Edges {
		if err := s.putJSON(ctx, edgePrefix+e.ID, e); err != nil {
			return err
		}
		live[edgePrefix+e.ID] = true
		ord.Edges = append(ord.Edges, e.ID)
	}
	if err := s.putJSON(ctx, orderKey, ord); err != nil {
		return err
	}
	live[orderKey] = true

	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}
		return fmt.Errorf("list graph keys: %w", err)
	}
	for _, key := range keys {
		if live[key] || !(strings.HasPrefix(key, nodePrefix) || strings.HasPrefix(key, edgePrefix)) {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *KVStore) getJSON(ctx context.Context, key string, v any) error {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(entry.Value(), v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if _, err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) ||
		(err != nil && strings.Contains(err.Error(), "key not found"))
}
