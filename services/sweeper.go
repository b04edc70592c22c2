// services/sweeper.go
package services

import (
	"log"
	"time"

	"spynet-qr-service/models"

	"github.com/go-co-op/gocron/v2"
)

// StartExpirySweeper deactivates credentials whose expiry has passed.
// Hygiene only — the scan path checks expiry itself, and checks it before the
// active flag, so swept credentials still reject as EXPIRED.
func (s *CredentialService) StartExpirySweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: sweep expired credentials
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()
			res := s.DB.Model(&models.Credential{}).
				Where("active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
				Update("active", false)
			if res.Error != nil {
				log.Printf("[Sweeper] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Swept %d expired credential(s)", res.RowsAffected)
			}
		}),
	)
}
