package jobs

import (
	"log"
	"time"

	"github.com/addahq/adda-backend/database"
	"github.com/addahq/adda-backend/models"
)

// DeleteExpiredStories purges stories older than the story TTL. Scheduled
// from main; expiry does not need to be exact, the story feed also filters by
// creation time.
func DeleteExpiredStories() {
	cutoff := time.Now().Add(-models.StoryTTL)

	result := database.DB.Where("created_at <= ?", cutoff).Delete(&models.Story{})
	if result.Error != nil {
		log.Printf("Error deleting expired stories: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Deleted %d expired stories", result.RowsAffected)
	}
}
