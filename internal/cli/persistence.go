package cli

import (
	"encoding/base64"
	"fmt"

	"github.com/aretw0/kinema/internal/adapters/file"
	"github.com/aretw0/kinema/pkg/adapters/memory"
	"github.com/aretw0/kinema/pkg/adapters/redis"
	"github.com/aretw0/kinema/pkg/persistence/middleware"
	"github.com/aretw0/kinema/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Persistence bundles the snapshot store of a command with the optional
// distributed locker of the Redis backend.
type Persistence struct {
	Store  ports.SnapshotStore
	Locker ports.DistributedLocker
	client *backend.Client
}

// Close releases the Redis connection, if any.
func (p *Persistence) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// setupPersistence picks Redis when an address is configured, the file
// store when a directory is, and memory otherwise. Encryption and masking
// wrap whichever store is chosen.
func setupPersistence(opts RunOptions) (*Persistence, error) {
	p := &Persistence{}
	switch {
	case opts.RedisAddr != "":
		p.client = backend.NewClient(&backend.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPass,
			DB:       opts.RedisDB,
		})
		var storeOpts []redis.Option
		if opts.SessionTTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(opts.SessionTTL))
		}
		p.Store = redis.NewFromClient(p.client, storeOpts...)
		p.Locker = redis.NewLocker(p.client, "kinema:")
	case opts.StoreDir != "":
		p.Store = file.New(opts.StoreDir)
	default:
		p.Store = memory.NewStore()
	}

	var mws []middleware.Middleware
	if len(opts.MaskInputs) > 0 {
		mask, err := middleware.NewMaskMiddleware(opts.MaskInputs)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mask)
	}
	if opts.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(opts.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, seal)
	}
	p.Store = middleware.Chain(p.Store, mws...)
	return p, nil
}
