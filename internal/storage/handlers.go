package storage

import (
	"context"
	"time"

	"github.com/dilitS/travel-conductor-ai-sub000/internal/db"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Media kinds accepted by the upload endpoint.
const (
	KindCoverPhoto     = "cover_photo"
	KindNarrationAudio = "narration_audio"
	KindPostPhoto      = "post_photo"
)

const uploadURLTTL = 15 * time.Minute

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) SaveObject(ctx context.Context, userID, url, kind string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO media_objects (id, user_id, url, kind)
		VALUES ($1,$2,$3,$4)
	`, id, userID, url, kind)
	if err != nil {
		return "", err
	}
	return id, nil
}

func validKind(kind string) bool {
	switch kind {
	case KindCoverPhoto, KindNarrationAudio, KindPostPhoto:
		return true
	}
	return false
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/upload", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			UserID   string `json:"user_id"`
			FileName string `json:"file_name"`
			Kind     string `json:"kind"`
		}
		_ = c.BodyParser(&body)
		if !validKind(body.Kind) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown media kind")
		}
		if body.FileName == "" {
			body.FileName = "upload"
		}
		url := "https://media.travelconductor.app/" + body.Kind + "/" + body.FileName
		id, err := svc.SaveObject(c.Context(), body.UserID, url, body.Kind)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"id":         id,
			"url":        url,
			"expires_at": time.Now().Add(uploadURLTTL),
		})
	})
}
