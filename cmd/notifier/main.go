package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/config"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/email"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/infrastructure/kafka"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/infrastructure/store"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/notification"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/pkg/logger"
)

func main() {
	cfg, err := config.LoadNotifier()
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.New(cfg.App.Env)).Named("notifier")
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Profiles and orders are read to address and fill in the emails.
	db, err := store.OpenPostgres(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()
	st := store.NewPostgresStore(db)

	mailer := email.NewService(
		email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password),
		cfg.SMTP.StoreName,
		log,
	)
	handler := notification.NewHandler(mailer, st, st, log)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ConsumerGroup, log)
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("consuming events",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
			zap.String("group", cfg.Kafka.ConsumerGroup),
			zap.String("smtp", cfg.SMTP.Host+":"+cfg.SMTP.Port),
		)
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			log.Error("consumer error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-done:
	}

	log.Info("shutting down")
	cancel()
	<-done
}
