package main

import (
	"context"
	"log"

	"plata/internal/domain/connection"
	"plata/internal/domain/transaction"
	"plata/internal/infrastructure/crypto"
	"plata/internal/infrastructure/mercadopago"
	"plata/internal/infrastructure/postgres"
	httphandlers "plata/internal/interfaces/http"
	"plata/internal/shared/auth"
	"plata/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler        *httphandlers.AuthHandler
	UserHandler        *httphandlers.UserHandler
	TransactionHandler *httphandlers.TransactionHandler
	StatsHandler       *httphandlers.StatsHandler
	ConnectHandler     *httphandlers.ConnectHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize encryptor for token storage
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	tokenRepo := postgres.NewTokenRepository(db, encryptor)

	// Initialize Mercado Pago integration
	mpClient := mercadopago.NewClient(mercadopago.Config{
		ClientID:     cfg.MercadoPago.ClientID,
		ClientSecret: cfg.MercadoPago.ClientSecret,
		RedirectURI:  cfg.MercadoPago.RedirectURI(),
	})
	connectionService := connection.NewService(tokenRepo, mpClient, cfg.MercadoPago.Configured())
	if !cfg.MercadoPago.Configured() {
		log.Println("Mercado Pago credentials missing, connect flow disabled")
	}

	// Initialize domain services
	transactionService := transaction.NewService(transactionRepo)
	statsService := transaction.NewStatsService(transactionRepo, cfg.Budget.Monthly)
	importerService := transaction.NewImporterService(transactionRepo, connectionService)

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Initialize handlers
	authHandler := httphandlers.NewAuthHandler(userRepo, jwt)
	userHandler := httphandlers.NewUserHandler(userRepo)
	transactionHandler := httphandlers.NewTransactionHandler(transactionService)
	statsHandler := httphandlers.NewStatsHandler(statsService)
	connectHandler := httphandlers.NewConnectHandler(connectionService, importerService, cfg.MercadoPago.AppBaseURL)

	return &Dependencies{
		DB:                 db,
		AuthHandler:        authHandler,
		UserHandler:        userHandler,
		TransactionHandler: transactionHandler,
		StatsHandler:       statsHandler,
		ConnectHandler:     connectHandler,
		JWT:                jwt,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
