// Package jobs は Asynq による非同期ジョブ（問い合わせ通知）を提供します。
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/yourusername/gym-portal/internal/logging"
)

// Manager はジョブの投入とワーカーの起動・停止を担います。
type Manager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	logger logging.Logger
}

// NewManager は Manager を初期化します。
func NewManager(redisURL string, concurrency int, processor *Processor, logger logging.Logger) (*Manager, error) {
	if processor == nil {
		return nil, errors.New("processor is nil")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueNotifications: 1,
			},
			Logger: asynqLogger{logger: logger.With("component", "asynq")},
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(TaskTypeContactNotify, processor)

	return &Manager{
		client: client,
		server: server,
		mux:    mux,
		logger: logger.With("component", "jobs"),
	}, nil
}

// StartWorkers は Asynq サーバーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			m.logger.Error(context.Background(), "asynq server stopped with error", "error", err)
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown() error {
	m.server.Shutdown()
	return m.client.Close()
}

// EnqueueContact は問い合わせ通知タスクをキューに投入し、タスク ID を返します。
func (m *Manager) EnqueueContact(ctx context.Context, contactID uint) (string, error) {
	task, err := NewContactTask(contactID)
	if err != nil {
		return "", err
	}
	info, err := m.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// asynqLogger は asynq.Logger を Logger に橋渡しします。
type asynqLogger struct {
	logger logging.Logger
}

func (l asynqLogger) Debug(args ...any) {}

func (l asynqLogger) Info(args ...any) {
	l.logger.Info(context.Background(), fmt.Sprint(args...))
}

func (l asynqLogger) Warn(args ...any) {
	l.logger.Warn(context.Background(), fmt.Sprint(args...))
}

func (l asynqLogger) Error(args ...any) {
	l.logger.Error(context.Background(), fmt.Sprint(args...))
}

func (l asynqLogger) Fatal(args ...any) {
	l.logger.Error(context.Background(), fmt.Sprint(args...))
}
