package entity

import "time"

// RunStatus pipeline natijasi
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
	RunEmpty   RunStatus = "empty" // mahsulot topilmadi, hech narsa yozilmadi
)

// Run bitta generatsiya haqida yozuv
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Status     RunStatus `json:"status"`
	Source     string    `json:"source"` // prays-list fayl nomi
	Categories int       `json:"categories"`
	Offers     int       `json:"offers"`
	URLs       []string  `json:"urls,omitempty"` // indekslash uchun yuborilgan havolalar
	Error      string    `json:"error,omitempty"`
}

// Duration generatsiya davomiyligi
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
