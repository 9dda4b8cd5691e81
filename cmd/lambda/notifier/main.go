package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/config"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/email"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/infrastructure/kinesis"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/infrastructure/store"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/notification"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/pkg/logger"
)

var (
	log                 *zap.Logger
	notificationHandler *notification.Handler
)

// init runs once per Lambda container so the connection pool survives across invocations.
func init() {
	cfg, err := config.LoadNotifier()
	if err != nil {
		panic(err)
	}
	log = logger.Must(logger.New(cfg.App.Env)).Named("lambda-notifier")

	db, err := store.OpenPostgres(context.Background(), cfg.Database.URL, 2, 2)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	st := store.NewPostgresStore(db)

	mailer := email.NewService(
		email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password),
		cfg.SMTP.StoreName,
		log,
	)
	notificationHandler = notification.NewHandler(mailer, st, st, log)

	log.Info("initialized", zap.String("smtp", cfg.SMTP.Host+":"+cfg.SMTP.Port))
}

func main() {
	lambda.Start(kinesis.NewLambdaHandler(notificationHandler.HandleEvent, log))
}
