package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/gomail.v2"

	"github.com/famhubid/famhub/config"
	"github.com/famhubid/famhub/internal/helpers"
	"github.com/famhubid/famhub/internal/logger"
)

const maxEmailTries = 3

// Worker drains the email queue and delivers messages over SMTP.
type Worker struct {
	redis  *redis.Client
	dialer *gomail.Dialer
	from   string
}

func NewWorker(redisClient *redis.Client, smtp *config.SMTPConfig) *Worker {
	port, err := helpers.StringToInt(smtp.Port)
	if err != nil {
		port = 587
	}
	return &Worker{
		redis:  redisClient,
		dialer: gomail.NewDialer(smtp.Host, port, smtp.Username, smtp.Password),
		from:   smtp.From,
	}
}

// Run blocks on the queue until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
		}

		result, err := w.redis.BRPop(ctx, 5*time.Second, emailQueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			logger.Error("failed to pop email job", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job EmailJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			logger.Error("failed to unmarshal email job", "error", err)
			continue
		}

		if err := w.send(job); err != nil {
			logger.Error("failed to send email", "to", job.To, "tries", job.Tries, "error", err)
			w.requeue(ctx, job)
		}
	}
}

func (w *Worker) send(job EmailJob) error {
	m := gomail.NewMessage()
	m.SetHeader("From", w.from)
	m.SetAddressHeader("To", job.To, job.Name)
	m.SetHeader("Subject", job.Subject)
	m.SetBody("text/plain", job.Body)

	return w.dialer.DialAndSend(m)
}

func (w *Worker) requeue(ctx context.Context, job EmailJob) {
	job.Tries++
	if job.Tries >= maxEmailTries {
		logger.Error("dropping email job after max tries", "to", job.To)
		return
	}

	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := w.redis.LPush(ctx, emailQueueKey, data).Err(); err != nil {
		logger.Error("failed to requeue email job", "error", err)
	}
}
