package notification

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"tourly/database"
	"tourly/models"
	"tourly/services/tasks"
)

const dateLayout = "Mon 2 Jan 15:04"

func (s *DefaultNotificationService) ReservationCreated(ctx context.Context, r models.Reservation, slot models.Slot) {
	logger := s.Logger.With(zap.String("reservationId", r.ID))

	if slot.GuideID != "" {
		body := fmt.Sprintf("%s booked %d seat%s for %s on %s.",
			r.FullName, r.PartySize, plural(r.PartySize), r.TourTitle, r.SlotStart.Format(dateLayout))
		err := s.sendTopicPush(ctx, GuideTopic(slot.GuideID), "New reservation", body, map[string]string{
			"type":          "reservation_created",
			"reservationId": r.ID,
			"slotId":        r.SlotID,
			"tourId":        r.TourID,
		})
		if err != nil {
			logger.Warn("Guide push failed", zap.String("guideId", slot.GuideID), zap.Error(err))
		}
	}

	if r.UserID == "" {
		return
	}
	if err := s.scheduleReminder(ctx, r); err != nil {
		logger.Warn("Reminder scheduling failed", zap.Error(err))
	}
}

func (s *DefaultNotificationService) scheduleReminder(ctx context.Context, r models.Reservation) error {
	if s.Queue == nil {
		return nil
	}
	fireAt := r.SlotStart.Add(-s.LeadTime)
	if !fireAt.After(s.Now()) {
		// too close to the start for a reminder to be useful
		return nil
	}

	task, opts, err := tasks.NewReminderTask(models.ReminderPayload{
		ReservationID: r.ID,
		UserID:        r.UserID,
		TourTitle:     r.TourTitle,
		SlotStart:     r.SlotStart,
	}, fireAt)
	if err != nil {
		return fmt.Errorf("build reminder task: %w", err)
	}
	if _, err := s.Queue.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	s.Logger.Debug("Reminder scheduled", zap.String("reservationId", r.ID), zap.Time("fireAt", fireAt))
	return nil
}

func (s *DefaultNotificationService) SendReminder(ctx context.Context, p models.ReminderPayload) error {
	r, err := s.Reservations.GetByID(ctx, p.ReservationID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.Logger.Info("Reminder dropped, reservation gone", zap.String("reservationId", p.ReservationID))
			return nil
		}
		return fmt.Errorf("SendReminder: could not load reservation %s: %w", p.ReservationID, err)
	}
	if r.Status == models.StatusCancelled {
		s.Logger.Info("Reminder dropped, reservation cancelled", zap.String("reservationId", r.ID))
		return nil
	}

	body := fmt.Sprintf("%s starts %s. See you there!", r.TourTitle, r.SlotStart.Format(dateLayout))
	return s.sendTopicPush(ctx, UserTopic(p.UserID), "Upcoming tour", body, map[string]string{
		"type":          "reservation_reminder",
		"reservationId": r.ID,
	})
}

func (s *DefaultNotificationService) sendTopicPush(ctx context.Context, topic, title, body string, data map[string]string) error {
	if s.Sender == nil {
		return nil
	}
	msg := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
	if _, err := s.Sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message to %s: %w", topic, err)
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
