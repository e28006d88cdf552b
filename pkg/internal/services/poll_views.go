package services

import (
	"sync"

	"github.com/polleyhq/polley/pkg/internal/database"
	"github.com/polleyhq/polley/pkg/internal/models"
)

var (
	pollViewQueue []models.PollView
	pollViewLock  sync.Mutex
)

func AddPollView(poll models.Poll, viewer string) {
	pollViewLock.Lock()
	defer pollViewLock.Unlock()
	pollViewQueue = append(pollViewQueue, models.PollView{
		PollID:         poll.ID,
		ViewerIdentity: viewer,
	})
}

func FlushPollViews() {
	pollViewLock.Lock()
	if len(pollViewQueue) == 0 {
		pollViewLock.Unlock()
		return
	}
	workingQueue := make([]models.PollView, len(pollViewQueue))
	copy(workingQueue, pollViewQueue)
	pollViewQueue = pollViewQueue[:0]
	pollViewLock.Unlock()

	updateRequiredPoll := make(map[uint]bool)
	for _, item := range workingQueue {
		updateRequiredPoll[item.PollID] = true
	}
	_ = database.C.CreateInBatches(workingQueue, 1000).Error
	for k := range updateRequiredPoll {
		var count int64
		if err := database.C.Model(&models.PollView{}).Where("poll_id = ?", k).Count(&count).Error; err != nil {
			continue
		}
		database.C.Model(&models.Poll{}).Where("id = ?", k).Update("total_views", count)
	}
}
