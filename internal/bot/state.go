package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/aparra/img2card-bot/internal/constants"
	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/aparra/img2card-bot/internal/service/cache"
)

// conversationState tracks the two pieces of per-chat memory the photo flow
// needs: a photo parked while we wait for the user's location, and the last
// location a user shared. Locations are mirrored to Redis (when configured)
// so they survive restarts.
type conversationState struct {
	mu       sync.Mutex
	pending  map[int64]string // chat id -> telegram file id
	location map[int64]domain.Coordinates

	cache *cache.CacheService
}

func newConversationState(cacheSvc *cache.CacheService) *conversationState {
	return &conversationState{
		pending:  make(map[int64]string),
		location: make(map[int64]domain.Coordinates),
		cache:    cacheSvc,
	}
}

func (s *conversationState) parkPhoto(chatID int64, fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[chatID] = fileID
}

func (s *conversationState) takePhoto(chatID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fileID, ok := s.pending[chatID]
	if ok {
		delete(s.pending, chatID)
	}
	return fileID, ok
}

func (s *conversationState) rememberLocation(ctx context.Context, userID int64, coords domain.Coordinates) {
	s.mu.Lock()
	s.location[userID] = coords
	s.mu.Unlock()

	_ = s.cache.Set(ctx, locationKey(userID), coords, constants.CacheTTL.LastLocation)
}

func (s *conversationState) lastLocation(ctx context.Context, userID int64) (domain.Coordinates, bool) {
	s.mu.Lock()
	coords, ok := s.location[userID]
	s.mu.Unlock()
	if ok {
		return coords, true
	}

	var cached domain.Coordinates
	if hit, err := s.cache.Get(ctx, locationKey(userID), &cached); err == nil && hit {
		s.mu.Lock()
		s.location[userID] = cached
		s.mu.Unlock()
		return cached, true
	}
	return domain.Coordinates{}, false
}

func locationKey(userID int64) string {
	return fmt.Sprintf("loc:%d", userID)
}
