package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"pawpals/internal/adapters/broker/rabbitmq"
	"pawpals/internal/platform/logger"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume due reminder notifications",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer syncLogger(log)

		if cfg.RabbitMQ.URL == "" {
			return errors.New("RABBITMQ_URL is required")
		}
		consumer, err := rabbitmq.NewConsumer(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		})
		if err != nil {
			return err
		}
		defer consumer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithContext(ctx, log)

		log.Info("reminder worker started", map[string]any{"queue": cfg.RabbitMQ.Queue})
		return consumer.Run(ctx, logDue)
	},
}

// logDue es el handler por defecto: el envío push queda fuera de este servicio.
func logDue(ctx context.Context, msg rabbitmq.ReminderDue) error {
	logger.FromContext(ctx).Info("reminder due", map[string]any{
		"reminder_id":   msg.ReminderID,
		"dog_id":        msg.DogID,
		"reminder_type": msg.Type,
		"due_date":      msg.DueDate,
	})
	return nil
}
