package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/notify"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
	"github.com/jochenheirman09/broos-app-sub001/internal/worker"
)

// AlertNotifier pushes a heads-up to the staff of the player's team when an
// alert is created. The push never carries the triggering message.
type AlertNotifier struct {
	DB         *gorm.DB
	Dispatcher notify.Dispatcher
	Pool       *worker.Pool
}

// AlertCreated schedules the staff notification for a.
func (n *AlertNotifier) AlertCreated(a domain.Alert) {
	if n == nil || n.Dispatcher == nil {
		return
	}
	task := func(ctx context.Context) error {
		_, err := n.NotifyStaff(ctx, a)
		return err
	}
	if n.Pool == nil {
		if err := task(context.Background()); err != nil {
			log.Error().Err(err).Str("alert_id", a.ID).Msg("alert notification failed")
		}
		return
	}
	if err := n.Pool.Submit("alert-notify", task); err != nil {
		log.Error().Err(err).Str("alert_id", a.ID).Msg("alert notification not scheduled")
	}
}

// NotifyStaff sends the push for a to every staff member of its team.
func (n *AlertNotifier) NotifyStaff(ctx context.Context, a domain.Alert) (notify.SendResult, error) {
	if a.TeamID == "" {
		return notify.SendResult{NothingToSend: true}, nil
	}
	staff, err := repo.ListTeamMembers(ctx, n.DB, a.ClubID, a.TeamID, domain.RoleStaff)
	if err != nil {
		return notify.SendResult{}, fmt.Errorf("list staff: %w", err)
	}
	ids := make([]string, 0, len(staff))
	for _, s := range staff {
		ids = append(ids, s.ID)
	}
	res, err := n.Dispatcher.Send(ctx, ids, notify.Message{
		Title: "New wellbeing alert",
		Body:  "A player in your team may need attention. Open the app to review.",
		Data: map[string]string{
			"alert_id": a.ID,
			"club_id":  a.ClubID,
			"team_id":  a.TeamID,
			"type":     string(a.Type),
		},
	})
	if err != nil {
		return res, err
	}
	if res.NothingToSend {
		log.Info().Str("alert_id", a.ID).Str("team_id", a.TeamID).Msg("no staff devices to notify")
	}
	return res, nil
}
