package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// TaskTypeContactNotify は問い合わせ受付通知のタスク種別です。
	TaskTypeContactNotify = "contact:notify"

	// QueueNotifications は通知タスクを流すキュー名です。
	QueueNotifications = "notifications"

	maxNotifyRetry = 3
)

// ContactPayload は問い合わせ通知タスクのペイロードです。
type ContactPayload struct {
	ContactID uint `json:"contactId"`
}

// NewContactTask は問い合わせ通知タスクを作成します。
func NewContactTask(contactID uint) (*asynq.Task, error) {
	if contactID == 0 {
		return nil, fmt.Errorf("contactID is required")
	}
	body, err := json.Marshal(ContactPayload{ContactID: contactID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeContactNotify, body,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(maxNotifyRetry),
	), nil
}
