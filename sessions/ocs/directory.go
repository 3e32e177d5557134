package ocs

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/talkline/roomsession/internal/errors"
	"github.com/talkline/roomsession/sessions"
)

var _ sessions.BackendRoomClient = (*CachedDirectory)(nil)

// CachedDirectory decorates a BackendRoomClient with a room metadata cache.
// Concurrent misses for one token share a single Get; joins refresh the entry.
type CachedDirectory struct {
	sessions.BackendRoomClient
	cache  *lru.Cache[string, sessions.RoomMetadata]
	sfRoom singleflight.Group
}

func NewCachedDirectory(backend sessions.BackendRoomClient, size int) (*CachedDirectory, error) {
	cache, err := lru.New[string, sessions.RoomMetadata](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &CachedDirectory{
		BackendRoomClient: backend,
		cache:             cache,
	}, nil
}

func (d *CachedDirectory) Join(ctx context.Context, token string) (*sessions.JoinResult, error) {
	res, err := d.BackendRoomClient.Join(ctx, token)
	if err == nil && res != nil && res.Room != nil {
		d.cache.Add(token, *res.Room)
	}
	return res, err
}

func (d *CachedDirectory) Get(ctx context.Context, token string) (*sessions.RoomMetadata, error) {
	if room, ok := d.cache.Get(token); ok {
		return &room, nil
	}

	result, err, _ := d.sfRoom.Do(token, func() (any, error) {
		// a fetch that just finished may have filled it
		if room, ok := d.cache.Get(token); ok {
			return room, nil
		}
		room, err := d.BackendRoomClient.Get(ctx, token)
		if err != nil {
			if errors.Is(sessions.Classify(err), sessions.KindNotFound) {
				d.cache.Remove(token)
			}
			return nil, err
		}
		d.cache.Add(token, *room)
		return *room, nil
	})
	if err != nil {
		return nil, err
	}
	//nolint:forcetypeassert
	room := result.(sessions.RoomMetadata)
	return &room, nil
}
