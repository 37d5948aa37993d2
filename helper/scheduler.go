package helper

import (
	"log"
	"time"

	"somnus_tickets/database"
	"somnus_tickets/model"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
)

var saleSweeper *cron.Cron
var eventScheduler gocron.Scheduler

// StartSaleSweeper cancels abandoned PENDING sales on a fixed cadence.
func StartSaleSweeper() {
	saleSweeper = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := saleSweeper.AddFunc("*/5 * * * *", func() {
		swept, err := ExpireStalePendingSales(database.DB)
		if err != nil {
			log.Printf("pending sale sweep failed: %v", err)
			return
		}
		if swept > 0 {
			log.Printf("cancelled %d abandoned pending sales", swept)
		}
	})
	if err != nil {
		log.Printf("failed to start sale sweeper: %v", err)
		return
	}

	saleSweeper.Start()
	log.Println("Sale sweeper started (every 5 minutes)")
}

func StopSaleSweeper() {
	if saleSweeper != nil {
		saleSweeper.Stop()
	}
}

// UpdateEventWindows deactivates events whose end time has passed.
func UpdateEventWindows() {
	now := time.Now()
	result := database.DB.Model(&model.Event{}).
		Where("is_active = ? AND ends_at < ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		log.Printf("failed to close finished events: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("deactivated %d finished events", result.RowsAffected)
	}
}

func StartEventScheduler() {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal(err)
	}

	eventScheduler = s

	_, err = s.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(UpdateEventWindows),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Println("Event window scheduler started (every 15 minutes)")
}

func StopEventScheduler() {
	if eventScheduler != nil {
		if err := eventScheduler.Shutdown(); err != nil {
			log.Printf("event scheduler shutdown: %v", err)
		}
	}
}
