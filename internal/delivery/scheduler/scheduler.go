package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yourusername/pricefeed/internal/usecase"
)

// Scheduler generatsiyani cron jadvali bo'yicha ishga tushiradi
type Scheduler struct {
	cron *cron.Cron
	feed usecase.FeedUseCase
}

// New jadvalni tekshirib, yangi scheduler yaratish.
// spec standart 5 maydonli cron ifodasi ("0 3 1 * *" - har oy 1-sanasi 03:00).
func New(ctx context.Context, spec string, feed usecase.FeedUseCase) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, feed: feed}

	if _, err := c.AddFunc(spec, func() { s.runOnce(ctx) }); err != nil {
		return nil, fmt.Errorf("noto'g'ri GENERATE_SCHEDULE %q: %w", spec, err)
	}
	return s, nil
}

// Start jadvalni boshlash
func (s *Scheduler) Start() {
	log.Printf("⏰ Scheduled generation, next run at %s", s.Next().Format("2006-01-02 15:04"))
	s.cron.Start()
}

// Stop jadvalni to'xtatish va ishlayotgan generatsiyani kutish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next keyingi ishga tushish vaqti
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(time.Now())
}

func (s *Scheduler) runOnce(ctx context.Context) {
	log.Println("⏰ Scheduled generation started")
	if _, err := s.feed.Generate(ctx); err != nil {
		if errors.Is(err, usecase.ErrRunInProgress) {
			log.Println("⏭️ Previous generation still running, skipping")
			return
		}
		log.Printf("❌ Scheduled generation failed: %v", err)
	}
}
