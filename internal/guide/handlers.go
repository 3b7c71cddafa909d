package guide

import (
	"encoding/json"

	"github.com/dilitS/travel-conductor-ai-sub000/internal/stream"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, store *Store, hub *stream.Hub, authMiddleware fiber.Handler) {
	r.Post("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			TripID string `json:"trip_id"`
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.TripID == "" || body.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "trip_id and user_id required")
		}
		id, err := store.CreateSession(c.Context(), body.TripID, body.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "status": StatusActive})
	})

	r.Get("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		tripID := c.Query("trip_id")
		userID := c.Query("user_id")
		if tripID == "" || userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "trip_id and user_id required")
		}
		session, err := store.GetSession(c.Context(), tripID, userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if session == nil {
			return fiber.NewError(fiber.StatusNotFound, "no active session")
		}
		return c.JSON(session)
	})

	r.Post("/sessions/:id/location", authMiddleware, func(c *fiber.Ctx) error {
		var fix GeoFix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		sessionID := c.Params("id")
		if err := store.UpdateLocation(c.Context(), sessionID, fix); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if hub != nil {
			payload, _ := json.Marshal(fix)
			hub.BroadcastEvent(stream.Event{Type: "location", SessionID: sessionID, Payload: payload})
		}
		return c.JSON(fix)
	})

	r.Post("/sessions/:id/events/:eventID/played", authMiddleware, func(c *fiber.Ctx) error {
		sessionID := c.Params("id")
		eventID := c.Params("eventID")
		if err := store.MarkAutoplayed(c.Context(), sessionID, eventID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if hub != nil {
			payload, _ := json.Marshal(fiber.Map{"event_id": eventID})
			hub.BroadcastEvent(stream.Event{Type: "narration_played", SessionID: sessionID, Payload: payload})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/sessions/:id/end", authMiddleware, func(c *fiber.Ctx) error {
		sessionID := c.Params("id")
		if err := store.EndSession(c.Context(), sessionID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if hub != nil {
			hub.BroadcastEvent(stream.Event{Type: "session_ended", SessionID: sessionID})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
