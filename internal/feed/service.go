package feed

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/dilitS/travel-conductor-ai-sub000/internal/db"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 30 * time.Second

type Service struct {
	db       db.Querier
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewService(db db.Querier, cache *redis.Client, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Service{db: db, cache: cache, cacheTTL: cacheTTL}
}

func (s *Service) CreatePost(ctx context.Context, input Post) (Post, error) {
	input.ID = uuid.NewString()
	if input.Visibility == "" {
		input.Visibility = "public"
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, user_id, trip_id, content, location, visibility)
		VALUES ($1,$2,$3,$4, ST_SetSRID(ST_MakePoint($5,$6), 4326)::geography, $7)
		RETURNING created_at
	`, input.ID, input.UserID, nullable(input.TripID), input.Content, input.Lng, input.Lat, input.Visibility)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Post{}, err
	}

	s.invalidateFeed(ctx, input.UserID)
	return input, nil
}

func (s *Service) AddPhoto(ctx context.Context, postID, url string) (PostPhoto, error) {
	photo := PostPhoto{
		ID:     uuid.NewString(),
		PostID: postID,
		URL:    url,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO post_photos (id, post_id, photo_url)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, photo.ID, photo.PostID, photo.URL)
	if err := row.Scan(&photo.CreatedAt); err != nil {
		return PostPhoto{}, err
	}
	return photo, nil
}

func (s *Service) Follow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_follows (follower_id, following_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, followerID, followingID)
	return err
}

// Feed returns the user's home feed. Responses are cached in redis for a
// short TTL; a cache miss or a redis outage falls through to postgres.
func (s *Service) Feed(ctx context.Context, userID string) ([]Post, error) {
	key := feedCacheKey(userID)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var posts []Post
			if err := json.Unmarshal(cached, &posts); err == nil {
				return posts, nil
			}
		} else if err != redis.Nil {
			log.Printf("feed: cache read error: %v", err)
		}
	}

	posts, err := s.queryFeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(posts); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				log.Printf("feed: cache write error: %v", err)
			}
		}
	}
	return posts, nil
}

func (s *Service) queryFeed(ctx context.Context, userID string) ([]Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, COALESCE(trip_id,''), content, ST_Y(location::geometry), ST_X(location::geometry), visibility, created_at
		FROM posts
		WHERE user_id=$1
		   OR user_id IN (SELECT following_id FROM user_follows WHERE follower_id=$1)
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	var ids []string
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.TripID, &p.Content, &p.Lat, &p.Lng, &p.Visibility, &p.CreatedAt); err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
		posts = append(posts, p)
	}

	photos, err := s.loadPhotos(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Photos = photos[posts[i].ID]
	}
	return posts, nil
}

func (s *Service) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, COALESCE(trip_id,''), content, ST_Y(location::geometry), ST_X(location::geometry), visibility, created_at
		FROM posts
		WHERE visibility='public'
		  AND ST_DWithin(location, ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography, $3)
		ORDER BY created_at DESC
	`, lng, lat, radiusKm*1000)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	var ids []string
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.TripID, &p.Content, &p.Lat, &p.Lng, &p.Visibility, &p.CreatedAt); err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
		posts = append(posts, p)
	}
	photos, err := s.loadPhotos(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Photos = photos[posts[i].ID]
	}
	return posts, nil
}

func (s *Service) loadPhotos(ctx context.Context, postIDs []string) (map[string][]PostPhoto, error) {
	if len(postIDs) == 0 {
		return map[string][]PostPhoto{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, photo_url, created_at
		FROM post_photos WHERE post_id = ANY($1)
		ORDER BY created_at
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	photos := map[string][]PostPhoto{}
	for rows.Next() {
		var p PostPhoto
		if err := rows.Scan(&p.ID, &p.PostID, &p.URL, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos[p.PostID] = append(photos[p.PostID], p)
	}
	return photos, nil
}

// invalidateFeed drops the cached feeds a new post by authorID appears in:
// the author's own and every follower's.
func (s *Service) invalidateFeed(ctx context.Context, authorID string) {
	if s.cache == nil {
		return
	}
	keys := []string{feedCacheKey(authorID)}
	rows, err := s.db.Query(ctx, `
		SELECT follower_id FROM user_follows WHERE following_id=$1
	`, authorID)
	if err != nil {
		log.Printf("feed: follower lookup for cache invalidation: %v", err)
	} else {
		defer rows.Close()
		for rows.Next() {
			var followerID string
			if err := rows.Scan(&followerID); err != nil {
				log.Printf("feed: follower scan for cache invalidation: %v", err)
				break
			}
			keys = append(keys, feedCacheKey(followerID))
		}
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		log.Printf("feed: cache invalidate error: %v", err)
	}
}

func feedCacheKey(userID string) string {
	return "feed:user:" + userID
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
