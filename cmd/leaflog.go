package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v9"

	"leaflog/internal/client"
	"leaflog/internal/configuration"
	"leaflog/internal/database"
	"leaflog/internal/logger"
	"leaflog/internal/server"
)

func main() {
	runApp()
	time.Sleep(10 * time.Second)
	os.Exit(1)
}

func runApp() error {
	appContext := context.Background()
	logOutput := io.Writer(os.Stdout)
	appLogger := logger.NewLogger(logger.LevelInfo, logOutput)

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	config, err := configuration.GetConfig("config.toml")
	if err != nil {
		appLogger.Error("Error getting configuration from config.toml:", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile("leaflog_backend.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.NewLogger(config.LogLevel, logOutput)

	appLogger.Info("Connecting to DB at", config.DatabaseURI)
	dbConn, err := database.ConnectDB(appContext, config.DatabaseURI)
	if err != nil {
		appLogger.Error("Error connecting to DB:", err)
		return err
	}
	defer func() {
		if err := dbConn.Disconnect(appContext); err != nil {
			appLogger.Error("Error disconnecting from DB:", err)
		}
	}()

	appLogger.Info("Connecting to Redis at", config.RedisAddress)
	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddress})
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("Error closing Redis client:", err)
		}
	}()

	appClient := client.Client{
		Client:  &http.Client{Timeout: 30 * time.Second},
		FCMKey:  config.FCMKey,
		AIKey:   config.AIAPIKey,
		AIModel: config.AIModel,
		Logger:  appLogger,
	}
	var ai client.AI = appClient
	if config.AIUseMock {
		appLogger.Warn("Using mock AI responses, ai_use_mock is enabled")
		ai = client.MockAI{}
	}

	srv := server.Server{
		DB:                database.Database{Database: dbConn.Database(database.Name)},
		Client:            appClient,
		AI:                ai,
		Feed:              &server.ChangeFeed{Redis: redisClient},
		Logger:            appLogger,
		AuthSecretKey:     config.AuthSecretKey,
		MaxEventsPerPlant: config.MaxEventsPerPlant,
		ReminderAfterDays: config.ReminderAfterDays,
	}

	appLogger.Info("Starting watering reminders with interval:", config.ReminderInterval)
	go srv.RemindInInterval(appContext, time.NewTicker(config.ReminderInterval))

	httpSrv := &http.Server{
		Handler:     srv.Router(),
		Addr:        config.ServerAddress,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 15 * time.Second,
		// No WriteTimeout, the subscribe endpoint holds its stream open
		// until the client goes away.
	}

	appLogger.Info("Serving on", httpSrv.Addr)
	return httpSrv.ListenAndServe()
}
