package store

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"travelease_service/domain"
)

const (
	recentListingsKey = "vehicles:recent"
	recentListingsTTL = 30 * time.Minute
)

type ListingRedisCache struct {
	cli    *redis.Client
	logger *log.Logger
	tracer trace.Tracer
}

func NewListingRedisCache(client *redis.Client, logger *log.Logger, tracer trace.Tracer) *ListingRedisCache {
	return &ListingRedisCache{
		cli:    client,
		logger: logger,
		tracer: tracer,
	}
}

// Check connection function
func (cache *ListingRedisCache) Ping() {
	val, _ := cache.cli.Ping().Result()
	cache.logger.Println(val)
}

func (cache *ListingRedisCache) PostRecent(ctx context.Context, vehicles []*domain.Vehicle) error {
	_, span := cache.tracer.Start(ctx, "ListingCache.PostRecent")
	defer span.End()

	jsonValue, err := json.Marshal(vehicles)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		cache.logger.Println(err)
		return err
	}

	err = cache.cli.Set(recentListingsKey, jsonValue, recentListingsTTL).Err()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		cache.logger.Println(err)
		return err
	}
	return nil
}

func (cache *ListingRedisCache) GetRecent(ctx context.Context) ([]*domain.Vehicle, error) {
	_, span := cache.tracer.Start(ctx, "ListingCache.GetRecent")
	defer span.End()

	jsonValue, err := cache.cli.Get(recentListingsKey).Result()
	if err != nil {
		if err != redis.Nil {
			span.SetStatus(codes.Error, err.Error())
			cache.logger.Println(err)
		}
		return nil, err
	}

	var vehicles []*domain.Vehicle
	err = json.Unmarshal([]byte(jsonValue), &vehicles)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		cache.logger.Println(err)
		return nil, err
	}

	cache.logger.Println("Cache hit - recent listings")
	return vehicles, nil
}

func (cache *ListingRedisCache) InvalidateRecent(ctx context.Context) error {
	_, span := cache.tracer.Start(ctx, "ListingCache.InvalidateRecent")
	defer span.End()

	result := cache.cli.Del(recentListingsKey)
	if result.Err() != nil {
		span.SetStatus(codes.Error, result.Err().Error())
		cache.logger.Println(result.Err())
		return result.Err()
	}
	return nil
}
