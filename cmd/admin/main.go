package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"plata/internal/domain/connection"
	"plata/internal/domain/transaction"
	"plata/internal/infrastructure/crypto"
	"plata/internal/infrastructure/mercadopago"
	"plata/internal/infrastructure/postgres"
	"plata/internal/shared/config"
)

const usage = `Plata Admin CLI - Management commands for the Plata API

Usage:
  admin <command> [options]

Commands:
  import         Import Mercado Pago movements into the transactions table
  recategorize   Reapply categorization rules to existing transactions

Examples:
  # Import movements for a specific user
  admin import --user-id=1

  # Import movements for multiple users
  admin import --user-id=1,2,3

  # Import movements for every connected user
  admin import --all

  # Run with custom worker count for higher concurrency
  admin import --all --workers=8

  # Run with timeout
  admin import --user-id=1 --timeout=5m

  # Recategorize a user's transactions after a rule change
  admin recategorize --user-id=1

  # Recategorize everyone
  admin recategorize --all
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "import":
		runImport(os.Args[2:])
	case "recategorize":
		runRecategorize(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to import (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Import for all users with a connected account")
	workers := fs.Int("workers", transaction.DefaultWorkerCount, "Number of concurrent workers")
	limit := fs.Int("limit", 0, "Max movements per user (0 uses the service default)")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin import [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin import --user-id=1")
		fmt.Println("  admin import --user-id=1,2,3")
		fmt.Println("  admin import --all --workers=8 --timeout=1h")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.MercadoPago.Configured() {
		log.Fatal("Mercado Pago credentials are not configured")
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		log.Fatalf("Failed to create encryptor: %v", err)
	}

	transactionRepo := postgres.NewTransactionRepository(db)
	tokenRepo := postgres.NewTokenRepository(db, encryptor)

	mpClient := mercadopago.NewClient(mercadopago.Config{
		ClientID:     cfg.MercadoPago.ClientID,
		ClientSecret: cfg.MercadoPago.ClientSecret,
		RedirectURI:  cfg.MercadoPago.RedirectURI(),
	})
	connectionService := connection.NewService(tokenRepo, mpClient, true)
	importer := transaction.NewImporterService(transactionRepo, connectionService)
	batch := transaction.NewBatchImporter(importer, *workers)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var userIDs []int64
	if *allUsers {
		userIDs, err = tokenRepo.ListUserIDs(ctx)
		if err != nil {
			log.Fatalf("Failed to list connected users: %v", err)
		}
		log.Printf("Found %d connected user(s)", len(userIDs))
	} else {
		userIDs = parseUserIDs(*userIDStr)
	}

	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	log.Printf("Starting import for %d user(s) with %d workers", len(userIDs), *workers)
	startTime := time.Now()

	outcomes := batch.ImportForUsers(ctx, userIDs, *limit)
	for uid, outcome := range outcomes {
		fmt.Printf("\n=== User %d ===\n", uid)
		if outcome.Err != nil {
			fmt.Printf("  Error: %v\n", outcome.Err)
			continue
		}
		fmt.Printf("  Movements imported: %d\n", outcome.Result.Imported)
		fmt.Printf("  Provider total:     %d\n", outcome.Result.Total)
	}

	log.Printf("Import completed in %v", time.Since(startTime))
}

func runRecategorize(args []string) {
	fs := flag.NewFlagSet("recategorize", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to recategorize (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Recategorize all users with transactions")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin recategorize [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin recategorize --user-id=1")
		fmt.Println("  admin recategorize --all")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	transactionRepo := postgres.NewTransactionRepository(db)
	svc := transaction.NewRecategorizeService(transactionRepo)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var userIDs []int64
	if *allUsers {
		userIDs, err = transactionRepo.ListUserIDs(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		log.Printf("Found %d user(s) with transactions", len(userIDs))
	} else {
		userIDs = parseUserIDs(*userIDStr)
	}

	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	startTime := time.Now()
	for _, uid := range userIDs {
		result, err := svc.RecategorizeUser(ctx, uid)
		fmt.Printf("\n=== User %d ===\n", uid)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}
		fmt.Printf("  Transactions checked: %d\n", result.Checked)
		fmt.Printf("  Categories updated:   %d\n", result.Updated)
	}

	log.Printf("Recategorization completed in %v", time.Since(startTime))
}

func parseUserIDs(s string) []int64 {
	var ids []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Fatalf("Invalid user ID '%s': %v", p, err)
		}
		ids = append(ids, id)
	}
	return ids
}
