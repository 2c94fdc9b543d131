package service

import (
	"context"
	"errors"
	"hash/maphash"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	sfg     singleflight.Group // Prevents cache stampede

	// write generations, striped by session; a fill is dropped when its stripe moved
	seed        maphash.Seed
	generations [generationStripes]atomic.Uint64
}

const generationStripes = 256

func NewCartService(repo repository.CartRepository, cache cache.CartCache, log logrus.FieldLogger, m *metrics.Metrics) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cache,
		log:     log,
		metrics: m,
		seed:    maphash.MakeSeed(),
	}
}

// GetCart returns the session's cart, or an empty cart when none was stored.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			s.metrics.CartCache.WithLabelValues("hit").Inc()
			return cart, nil
		}

		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.CartCache.WithLabelValues("miss").Inc()
		} else {
			s.metrics.CartCache.WithLabelValues("error").Inc()
			logger.FromContext(ctx, s.log).WithError(err).Warn("cache get failed")
		}

		gen := s.generation(sessionID).Load()
		cart, errGet := s.repo.GetCart(ctx, sessionID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return domain.NewCart(sessionID), nil
		}
		if errGet != nil {
			return nil, errGet
		}

		s.fillCache(sessionID, gen, cart.Clone())

		return cart, nil
	})

	s.metrics.CartOperations.WithLabelValues("get", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	// callers sharing a flight must not share the slice
	return v.(*domain.Cart).Clone(), nil
}

// OrderAlreadyExists reports whether an item with itemID is in the cart.
func (s *CartService) OrderAlreadyExists(ctx context.Context, sessionID string, itemID string) (bool, error) {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return cart.Contains(itemID), nil
}

// AddItem adds item unless the cart already holds one with the same ID.
func (s *CartService) AddItem(ctx context.Context, sessionID string, item domain.CartItem) error {
	added, err := s.repo.AddItem(ctx, sessionID, item)
	s.metrics.CartOperations.WithLabelValues("add", metrics.Result(err)).Inc()
	if err != nil {
		logger.FromContext(ctx, s.log).WithError(err).Error("repo add item failed")
		return err
	}

	if !added {
		logger.FromContext(ctx, s.log).WithField("item_id", item.ID).Debug("item already in cart")
		return nil
	}

	s.invalidateCache(sessionID)
	return nil
}

// RemoveItem drops the item if present. Missing carts and items are not errors.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, itemID string) error {
	err := s.repo.RemoveItem(ctx, sessionID, itemID)
	if errors.Is(err, repository.ErrCartNotFound) || errors.Is(err, repository.ErrItemNotFound) {
		err = nil
	}
	s.metrics.CartOperations.WithLabelValues("remove", metrics.Result(err)).Inc()
	if err != nil {
		logger.FromContext(ctx, s.log).WithError(err).Error("repo remove item failed")
		return err
	}

	s.invalidateCache(sessionID)
	return nil
}

// ClearCart empties the cart. Clearing a cart that does not exist is a no-op.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	err := s.repo.DeleteCart(ctx, sessionID)
	if errors.Is(err, repository.ErrCartNotFound) {
		err = nil
	}
	s.metrics.CartOperations.WithLabelValues("clear", metrics.Result(err)).Inc()
	if err != nil {
		logger.FromContext(ctx, s.log).WithError(err).Error("repo delete cart failed")
		return err
	}

	s.invalidateCache(sessionID)
	return nil
}

func (s *CartService) generation(sessionID string) *atomic.Uint64 {
	return &s.generations[maphash.String(s.seed, sessionID)%generationStripes]
}

// fillCache stores a cart read at generation gen. A write that lands while
// the fill is in progress either stops it or removes what it stored.
func (s *CartService) fillCache(sessionID string, gen uint64, cart *domain.Cart) {
	g := s.generation(sessionID)
	if g.Load() != gen {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Set(ctx, sessionID, cart); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("cache set failed")
		return
	}

	if g.Load() != gen {
		if err := s.cache.Delete(ctx, sessionID); err != nil {
			s.log.WithError(err).WithField("session_id", sessionID).Warn("cache drop of stale fill failed")
		}
	}
}

// invalidateCache must run after the repository write it follows.
func (s *CartService) invalidateCache(sessionID string) {
	s.generation(sessionID).Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("cache invalidate failed")
	}
}
