package server

import (
	"context"
	"fmt"
	"time"

	"leaflog/internal/client"
	"leaflog/internal/misc"
	"leaflog/internal/model"
)

func (s Server) RemindInInterval(ctx context.Context, ticker *time.Ticker) {
	for range ticker.C {
		s.remind(ctx)
	}
}

// remind walks every alive plant and notifies the owner's devices about the
// ones that have gone unwatered past the configured threshold.
func (s Server) remind(ctx context.Context) {
	s.Logger.Info("remind: Starting watering reminder pass")
	ps, err := s.DB.PlantsFindAll(ctx)
	if err != nil {
		s.Logger.Errorf("remind: Error getting all Plants from DB, err: %v", err)
		return
	}
	s.Logger.Infof("remind: Retrieved %d Plant(s) from DB", len(ps))

	now := time.Now()
	thirsty := map[string][]model.Plant{}
	for _, p := range ps {
		if p.Status != model.StatusAlive {
			continue
		}
		days := p.DaysSinceWatered(now)
		if days < 0 || days < s.ReminderAfterDays {
			continue
		}
		thirsty[p.OwnerID.Hex()] = append(thirsty[p.OwnerID.Hex()], p)
	}
	if len(thirsty) == 0 {
		s.Logger.Info("remind: No Plants past the watering threshold")
		return
	}

	for ownerID, plants := range thirsty {
		u, err := s.DB.UserFindByID(ctx, ownerID)
		if err != nil {
			s.Logger.Errorf("remind: Error finding User with ID: %s, err: %v", ownerID, err)
			continue
		}
		var fcmTokens []string
		for _, d := range u.Devices {
			if d.FCMToken != "" {
				fcmTokens = append(fcmTokens, d.FCMToken)
			}
		}
		if len(fcmTokens) == 0 {
			s.Logger.Debugf("remind: No Devices with FCMToken for User with ID: %s", ownerID)
			continue
		}

		for _, p := range plants {
			plantName := misc.StringLimit(p.Name, 45)
			days := p.DaysSinceWatered(now)
			fcmReq := client.FCMSendRequest{
				Notification: client.FCMNotification{
					Title:       "A plant needs watering!",
					Body:        fmt.Sprintf("%s has not been watered for %d days", plantName, days),
					ClickAction: "FLUTTER_NOTIFICATION_CLICK",
					Sound:       "default",
				},
				Data:            client.FCMData{PlantID: p.ID.Hex()},
				RegistrationIDs: fcmTokens,
			}
			s.Logger.Infof("remind: Sending notification to %d Device(s) for Plant: %s, ID: %s",
				len(fcmTokens), plantName, p.ID.Hex())
			fcmResp, err := s.Client.FCMSendNotification(fcmReq)
			if err != nil {
				s.Logger.Errorf("remind: Error sending notification to FCM for Plant: %s, ID: %s, err: %v",
					plantName, p.ID.Hex(), err)
				continue
			}
			s.Logger.Infof("remind: Send notification results for Plant: %s, ID: %s, success: %d, failure: %d",
				plantName, p.ID.Hex(), fcmResp.Success, fcmResp.Failure)
		}
	}
	s.Logger.Info("remind: Finished watering reminder pass")
}
