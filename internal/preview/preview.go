// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package preview keeps short-lived upload previews for the admin editor.
// A preview lets the editor show a picked image before the form is
// submitted. Previews are never sent to the content API and expire on
// their own.
package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "preview:"

// DefaultTTL is used when no TTL is configured.
const DefaultTTL = 15 * time.Minute

// Preview is a stored preview image.
type Preview struct {
	ContentType string
	Data        []byte
}

// Store saves previews in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a preview store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// TTL returns how long previews live.
func (s *Store) TTL() time.Duration { return s.ttl }

// Put stores a preview and returns its ID.
func (s *Store) Put(ctx context.Context, p Preview) (string, error) {
	id := uuid.NewString()
	key := keyPrefix + id
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "type", p.ContentType, "data", p.Data)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("preview put: %w", err)
	}
	return id, nil
}

// Get returns a preview, or nil when it does not exist or has expired.
func (s *Store) Get(ctx context.Context, id string) (*Preview, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	vals, err := s.client.HGetAll(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) || len(vals) == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("preview get: %w", err)
	}
	return &Preview{ContentType: vals["type"], Data: []byte(vals["data"])}, nil
}

// Discard removes a preview before it expires.
func (s *Store) Discard(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("preview discard: %w", err)
	}
	return nil
}
