package registry

// etcd lets a fleet of hosts share one catalogue of function names:
//
//	Key:   {prefix}/{FunctionName}
//	Value: JSON-encoded Function
//
// Entries registered with a TTL are attached to a lease kept alive in the
// background; if the registering process dies, the entry expires.

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

// DefaultPrefix is the key prefix used when none is given.
const DefaultPrefix = "/uffi/functions"

// EtcdRegistry implements the Registry interface using etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client // thread-safe, shared across goroutines
	prefix string
	log    *zap.Logger
}

// NewEtcdRegistry creates a new registry connected to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string, prefix string, dialTimeout time.Duration, log *zap.Logger) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("registry: connect etcd: %w", err)
	}
	return newEtcdRegistry(c, prefix, log), nil
}

func newEtcdRegistry(c *clientv3.Client, prefix string, log *zap.Logger) *EtcdRegistry {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EtcdRegistry{client: c, prefix: strings.TrimRight(prefix, "/"), log: log}
}

func (r *EtcdRegistry) key(name string) string {
	return r.prefix + "/" + name
}

// Register stores f, attached to a kept-alive lease when ttl > 0.
//
// The lease ID stays local to this call so several registrations can share
// one EtcdRegistry.
func (r *EtcdRegistry) Register(ctx context.Context, f Function, ttl int64) error {
	if err := f.Validate(); err != nil {
		return err
	}
	val, err := json.Marshal(f)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		_, err = r.client.Put(ctx, r.key(f.Name), string(val))
		return err
	}

	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}
	if _, err = r.client.Put(ctx, r.key(f.Name), string(val), clientv3.WithLease(lease.ID)); err != nil {
		return err
	}
	// KeepAlive outlives the registering request, so it is bound to the
	// client's own context rather than ctx.
	ch, err := r.client.KeepAlive(r.client.Ctx(), lease.ID)
	if err != nil {
		return err
	}
	// Consume KeepAlive responses to prevent the channel from filling up
	go func() {
		for range ch {
		}
		r.log.Debug("function lease ended", zap.String("function", f.Name))
	}()
	return nil
}

func (r *EtcdRegistry) Deregister(ctx context.Context, name string) error {
	_, err := r.client.Delete(ctx, r.key(name))
	return err
}

func (r *EtcdRegistry) Resolve(ctx context.Context, name string) (Function, error) {
	resp, err := r.client.Get(ctx, r.key(name))
	if err != nil {
		return Function{}, err
	}
	if len(resp.Kvs) == 0 {
		return Function{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	var f Function
	if err := json.Unmarshal(resp.Kvs[0].Value, &f); err != nil {
		return Function{}, fmt.Errorf("registry: malformed entry %s: %w", r.key(name), err)
	}
	return f, nil
}

// List returns every registered function, skipping malformed entries.
func (r *EtcdRegistry) List(ctx context.Context) ([]Function, error) {
	resp, err := r.client.Get(ctx, r.prefix+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}
	out := make([]Function, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var f Function
		if err := json.Unmarshal(kv.Value, &f); err != nil {
			r.log.Warn("skipping malformed registry entry", zap.ByteString("key", kv.Key), zap.Error(err))
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close releases the etcd client.
func (r *EtcdRegistry) Close() error {
	return r.client.Close()
}
