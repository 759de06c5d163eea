package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"storefront/internal/accounts"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/config"
	mydb "storefront/internal/db"
	"storefront/internal/handlers"
	"storefront/internal/mailer"
	"storefront/internal/orders"
	"storefront/internal/uploads"
)

func main() {
	// .env from the working dir, its parent, or the repo root when run from cmd/server
	_ = godotenv.Overload(".env", "../.env", "../../.env")

	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	if cfg.IsProduction() {
		log.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.SetLevel(logrus.DebugLevel)
	}
	if cfg.JWTSecret == "dev_fallback_secret" || cfg.SessionSecret == "dev_fallback_secret" {
		log.Warn("JWT_SECRET or SESSION_SECRET not set, using development fallback")
	}

	db := mydb.MustOpen(cfg, log)
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("Failed to get database handle")
	}
	defer sqlDB.Close()

	dir, err := uploads.NewDir(cfg.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare upload directory")
	}

	mail := mailer.New(mailer.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		User:      cfg.SMTPUser,
		Password:  cfg.SMTPPassword,
		From:      cfg.MailFrom,
		ContactTo: cfg.ContactTo,
	}, log)

	router := handlers.NewRouter(handlers.Deps{
		DB:            db,
		Uploads:       dir,
		Products:      catalog.NewStore(db, dir, log),
		Accounts:      accounts.NewService(db, mail, log),
		Orders:        orders.NewService(db, log),
		Contact:       mail,
		Issuer:        auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Log:           log,
		CORSOrigin:    cfg.CORSOrigin,
		SessionSecret: cfg.SessionSecret,
		SecureCookies: cfg.IsProduction(),
		PublicDir:     cfg.PublicDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":       cfg.Port,
			"upload_dir": dir.Root(),
			"db_type":    cfg.DBType,
		}).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	log.Info("Server exited")
}
