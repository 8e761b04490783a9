package notify

import (
	"fmt"

	"github.com/esemi/travian-manager/internal/models"
)

// NotifyIncomingAttack alerts about a hostile movement
func (m *Manager) NotifyIncomingAttack(attack models.IncomingAttack) error {
	return m.Notify(Notification{
		Type:    NotificationTypeAttack,
		Title:   "Incoming Attack",
		Message: fmt.Sprintf("%s attacks %s in %s", attack.Attacker, attack.Village, attack.ArriveIn),
		Data: map[string]interface{}{
			"attack_id": attack.ID,
			"village":   attack.Village,
			"attacker":  attack.Attacker,
		},
	})
}

// NotifyCrash alerts that the run loop stopped on an error
func (m *Manager) NotifyCrash(err error) error {
	return m.Notify(Notification{
		Type:    NotificationTypeCrash,
		Title:   "Bot Stopped",
		Message: fmt.Sprintf("run loop failed: %v", err),
	})
}

// NotifyQuestComplete reports collected quest rewards
func (m *Manager) NotifyQuestComplete(count int) error {
	return m.Notify(Notification{
		Type:    NotificationTypeQuest,
		Title:   "Quests Completed",
		Message: fmt.Sprintf("collected %d quest rewards", count),
		Data: map[string]interface{}{
			"count": count,
		},
	})
}

// NotifyHeroSent reports a hero dispatch
func (m *Manager) NotifyHeroSent(destination string) error {
	return m.Notify(Notification{
		Type:    NotificationTypeHero,
		Title:   "Hero Sent",
		Message: fmt.Sprintf("hero sent to %s", destination),
	})
}

// NotifyInfo sends a general informational notification
func (m *Manager) NotifyInfo(title, message string) error {
	return m.Notify(Notification{
		Type:    NotificationTypeInfo,
		Title:   title,
		Message: message,
	})
}
