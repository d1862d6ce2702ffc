// Command notifier consumes booking events from RabbitMQ and mails them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutrition-scheduler/internal/config"
	"nutrition-scheduler/internal/logger"
	"nutrition-scheduler/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(&logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		Output:     os.Stderr,
		JSON:       cfg.LogJSON,
		TimeFormat: time.RFC3339,
	})
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(logger.ContextWithLogger(ctx, log), cfg, log); err != nil {
		log.Error("notifier stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	n := cfg.Notify
	mailer, err := notify.NewMailer(notify.SMTPConfig{
		Host:     n.SMTPHost,
		Port:     n.SMTPPort,
		User:     n.SMTPUser,
		Password: n.SMTPPass,
		From:     n.MailFrom,
	})
	if err != nil {
		return err
	}

	host, _ := os.Hostname()
	w := notify.NewWorker(notify.WorkerConfig{
		URL:      n.RabbitURL,
		Exchange: n.Exchange,
		Queue:    n.Queue,
		DLX:      n.DLX,
		DLQ:      n.DLQ,
		Consumer: "notifier-" + host,
	}, mailer)
	if err := w.Connect(); err != nil {
		return err
	}
	defer w.Close()

	log.Info("consuming", "queue", n.Queue, "exchange", n.Exchange)
	return w.Run(ctx)
}
