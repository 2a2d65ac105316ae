package cache

import (
	"context"
	"time"

	"civicdesk/internal/conf"
	"civicdesk/internal/dao/repository"
	"civicdesk/internal/models"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCache keeps recently resolved actors in memory. Misses and errors are never cached,
// so a user created after a failed lookup resolves on the next call.
type UserCache struct {
	next  repository.UserRepository
	cache *lru.LRU[primitive.ObjectID, models.User]
}

// NewUserRepository wraps next with an expiring LRU sized by cfg. A non-positive
// size or TTL returns next unchanged.
func NewUserRepository(next repository.UserRepository, cfg *conf.AuditConfig) repository.UserRepository {
	if cfg == nil || cfg.ActorCacheSize <= 0 || cfg.ActorCacheTTLSeconds <= 0 {
		return next
	}
	return &UserCache{
		next:  next,
		cache: lru.NewLRU[primitive.ObjectID, models.User](cfg.ActorCacheSize, nil, time.Duration(cfg.ActorCacheTTLSeconds)*time.Second),
	}
}

func (c *UserCache) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := c.cache.Get(id); ok {
		return &u, nil
	}
	u, err := c.next.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, *u)
	return u, nil
}
