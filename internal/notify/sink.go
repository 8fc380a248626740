package notify

import (
	"context"
	"time"

	"github.com/miqat-dev/miqat/internal/model"
)

// Reminder is one scheduled notification handed to the sink. SoundName
// names the selected recording for adhan-category reminders; it is empty
// for the generic tone.
type Reminder struct {
	ID        model.ReminderID
	Title     string
	Body      string
	At        time.Time
	Sound     model.SoundCategory
	SoundName string
}

// Sink delivers reminder commands to the OS-level notification mechanism.
// Scheduling an id that is already scheduled replaces it.
type Sink interface {
	Schedule(ctx context.Context, r Reminder) error
	Cancel(ctx context.Context, id model.ReminderID) error
	CancelAll(ctx context.Context, ids []model.ReminderID) error
	// Permissions streams the device's notification-permission changes.
	Permissions() <-chan model.PermissionStatus
	Close()
}
