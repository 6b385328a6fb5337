package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yfin/finsync/internal/catalog"
	"github.com/yfin/finsync/internal/config"
	"github.com/yfin/finsync/internal/domain"
	"github.com/yfin/finsync/internal/engine"
	"github.com/yfin/finsync/internal/ledger"
	"github.com/yfin/finsync/internal/logger"
	"github.com/yfin/finsync/internal/remote"
	"github.com/yfin/finsync/internal/store/sqlite"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		runList(log)
	case "add":
		runAdd(log)
	case "update":
		runUpdate(log)
	case "delete":
		runDelete(log)
	case "balance":
		runBalance(log)
	case "categories":
		runCategories(log)
	case "sync":
		runSync(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("finsync - offline-first personal finance client")
	fmt.Println("\nUsage:")
	fmt.Println("  finsync <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  list        List transactions for a period")
	fmt.Println("  add         Record a new transaction")
	fmt.Println("  update      Edit an existing transaction")
	fmt.Println("  delete      Remove a transaction")
	fmt.Println("  balance     Show or edit the account balance")
	fmt.Println("  categories  List transaction categories")
	fmt.Println("  sync        Replay pending offline operations")
	fmt.Println("\nConfiguration comes from the environment (FINSYNC_API_URL,")
	fmt.Println("FINSYNC_TOKEN, FINSYNC_DB, FINSYNC_TIMEOUT), with .env honored.")
}

// app bundles the explicitly wired dependency graph.
type app struct {
	engine     *engine.Engine
	ledger     *ledger.Ledger
	categories *catalog.CategoryService
}

func buildApp(log zerolog.Logger) (*app, context.Context, context.CancelFunc) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open local store")
	}

	client, err := remote.NewClient(cfg.APIURL, cfg.Token, cfg.Timeout)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.APIURL).Msg("Failed to build API client")
	}

	led := ledger.New(client, db.Accounts())
	categories := catalog.NewCategoryService(client, db.Categories())
	eng := engine.New(client, db.Transactions(), db.Backups(), led, categories)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	ctx = logger.WithContext(ctx, log)
	return &app{engine: eng, ledger: led, categories: categories}, ctx, cancel
}

func runList(log zerolog.Logger) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fromStr := fs.String("from", "", "Start date, YYYY-MM-DD (default: one month ago)")
	toStr := fs.String("to", "", "End date, YYYY-MM-DD (default: today)")
	direction := fs.String("direction", "", "Filter: income or outcome")
	fs.Parse(os.Args[2:])

	from, to := parsePeriod(log, *fromStr, *toStr)

	a, ctx, cancel := buildApp(log)
	defer cancel()

	var (
		txs []domain.Transaction
		err error
	)
	switch *direction {
	case "":
		txs, err = a.engine.Get(ctx, from, to)
	case "income":
		txs, err = a.engine.GetByDirection(ctx, from, to, domain.Income)
	case "outcome":
		txs, err = a.engine.GetByDirection(ctx, from, to, domain.Outcome)
	default:
		log.Fatal().Str("direction", *direction).Msg("Direction must be income or outcome")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load transactions")
	}

	for _, tx := range txs {
		comment := tx.Comment
		if comment != "" {
			comment = "  " + comment
		}
		fmt.Printf("%8d  %s  %c %-20s %12s%s\n",
			tx.ID,
			tx.TransactionDate.Format("2006-01-02 15:04"),
			tx.Category.Emoji,
			tx.Category.Name,
			tx.SignedAmount().StringFixed(2),
			comment,
		)
	}
	fmt.Printf("\nTotal: %s\n", domain.NetTotal(txs).StringFixed(2))
}

func runAdd(log zerolog.Logger) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	categoryID := fs.Int("category", 0, "Category id (required)")
	amountStr := fs.String("amount", "", "Amount, non-negative decimal (required)")
	dateStr := fs.String("date", "", "Transaction date, YYYY-MM-DD (default: now)")
	comment := fs.String("comment", "", "Optional comment")
	fs.Parse(os.Args[2:])

	if *categoryID == 0 {
		log.Fatal().Msg("Error: --category is required")
	}
	amount := parseAmount(log, *amountStr)

	a, ctx, cancel := buildApp(log)
	defer cancel()

	account, err := a.ledger.Current(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve account")
	}
	category := resolveCategory(ctx, a, *categoryID)

	date := time.Now()
	if *dateStr != "" {
		if date, err = time.Parse("2006-01-02", *dateStr); err != nil {
			log.Fatal().Err(err).Str("date", *dateStr).Msg("Error: invalid date format, expected YYYY-MM-DD")
		}
	}

	tx, err := a.engine.Add(ctx, domain.Transaction{
		Account:         account,
		Category:        category,
		Amount:          amount,
		TransactionDate: date,
		Comment:         *comment,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Server unreachable, transaction queued for sync")
	}
	fmt.Printf("Recorded transaction %d: %s %s\n", tx.ID, tx.Category.Name, tx.SignedAmount().StringFixed(2))
}

func runUpdate(log zerolog.Logger) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.Int("id", 0, "Transaction id (required)")
	categoryID := fs.Int("category", 0, "New category id (0 keeps current)")
	amountStr := fs.String("amount", "", "New amount (empty keeps current)")
	dateStr := fs.String("date", "", "New date, YYYY-MM-DD (empty keeps current)")
	comment := fs.String("comment", "", "New comment (empty keeps current)")
	fs.Parse(os.Args[2:])

	if *id == 0 {
		log.Fatal().Msg("Error: --id is required")
	}

	a, ctx, cancel := buildApp(log)
	defer cancel()

	current := findTransaction(ctx, log, a, *id)

	if *categoryID != 0 && *categoryID != current.Category.ID {
		current.Category = resolveCategory(ctx, a, *categoryID)
	}
	if *amountStr != "" {
		current.Amount = parseAmount(log, *amountStr)
	}
	if *dateStr != "" {
		date, err := time.Parse("2006-01-02", *dateStr)
		if err != nil {
			log.Fatal().Err(err).Str("date", *dateStr).Msg("Error: invalid date format, expected YYYY-MM-DD")
		}
		current.TransactionDate = date
	}
	if *comment != "" {
		current.Comment = *comment
	}

	tx, err := a.engine.Update(ctx, current)
	if err != nil {
		log.Warn().Err(err).Msg("Server unreachable, edit queued for sync")
	}
	fmt.Printf("Updated transaction %d: %s %s\n", tx.ID, tx.Category.Name, tx.SignedAmount().StringFixed(2))
}

func runDelete(log zerolog.Logger) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Int("id", 0, "Transaction id (required)")
	fs.Parse(os.Args[2:])

	if *id == 0 {
		log.Fatal().Msg("Error: --id is required")
	}

	a, ctx, cancel := buildApp(log)
	defer cancel()

	if err := a.engine.Delete(ctx, *id); err != nil {
		log.Warn().Err(err).Msg("Server unreachable, deletion queued for sync")
	}
	fmt.Printf("Deleted transaction %d\n", *id)
}

func runBalance(log zerolog.Logger) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	set := fs.String("set", "", "New balance to push (empty just shows it)")
	name := fs.String("name", "", "New account name (empty keeps current)")
	currency := fs.String("currency", "", "New currency code (empty keeps current)")
	fs.Parse(os.Args[2:])

	a, ctx, cancel := buildApp(log)
	defer cancel()

	account, err := a.ledger.Current(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve account")
	}

	if *set == "" && *name == "" && *currency == "" {
		fmt.Printf("%s: %s %s\n", account.Name, account.Balance.StringFixed(2), account.CurrencySymbol())
		return
	}

	if *set != "" {
		account.Balance = parseAmount(log, *set)
	}
	if *name != "" {
		account.Name = *name
	}
	if *currency != "" {
		account.Currency = *currency
	}

	updated, err := a.ledger.UpdateAccount(ctx, account)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to update account")
	}
	fmt.Printf("%s: %s %s\n", updated.Name, updated.Balance.StringFixed(2), updated.CurrencySymbol())
}

func runCategories(log zerolog.Logger) {
	fs := flag.NewFlagSet("categories", flag.ExitOnError)
	direction := fs.String("direction", "", "Filter: income or outcome")
	fs.Parse(os.Args[2:])

	a, ctx, cancel := buildApp(log)
	defer cancel()

	var (
		categories []domain.Category
		err        error
	)
	switch *direction {
	case "":
		categories, err = a.categories.All(ctx)
	case "income":
		categories, err = a.categories.ByDirection(ctx, domain.Income)
	case "outcome":
		categories, err = a.categories.ByDirection(ctx, domain.Outcome)
	default:
		log.Fatal().Str("direction", *direction).Msg("Direction must be income or outcome")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load categories")
	}

	for _, cat := range categories {
		fmt.Printf("%4d  %c  %-20s %s\n", cat.ID, cat.Emoji, cat.Name, cat.Direction())
	}
}

func runSync(log zerolog.Logger) {
	a, ctx, cancel := buildApp(log)
	defer cancel()

	remaining, err := a.engine.Sync(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}
	if remaining == 0 {
		fmt.Println("All pending operations synced.")
		return
	}
	fmt.Printf("%d operation(s) still pending.\n", remaining)
	ops, err := a.engine.Pending(ctx)
	if err != nil {
		return
	}
	for _, op := range ops {
		fmt.Printf("  %s %d (%s)\n", op.Action, op.ID, op.Transaction.Amount.StringFixed(2))
	}
}

func parsePeriod(log zerolog.Logger, fromStr, toStr string) (time.Time, time.Time) {
	now := time.Now()
	from := now.AddDate(0, -1, 0).Truncate(24 * time.Hour)
	to := now

	var err error
	if fromStr != "" {
		if from, err = time.Parse("2006-01-02", fromStr); err != nil {
			log.Fatal().Err(err).Str("from", fromStr).Msg("Error: invalid from date, expected YYYY-MM-DD")
		}
	}
	if toStr != "" {
		if to, err = time.Parse("2006-01-02", toStr); err != nil {
			log.Fatal().Err(err).Str("to", toStr).Msg("Error: invalid to date, expected YYYY-MM-DD")
		}
		to = to.Add(24*time.Hour - time.Second)
	}
	if to.Before(from) {
		log.Fatal().Time("from", from).Time("to", to).Msg("Error: to date must be after from date")
	}
	return from, to
}

func parseAmount(log zerolog.Logger, raw string) decimal.Decimal {
	if raw == "" {
		log.Fatal().Msg("Error: --amount is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		log.Fatal().Err(err).Str("amount", raw).Msg("Error: invalid amount")
	}
	if amount.IsNegative() {
		log.Fatal().Str("amount", raw).Msg("Error: amount must be non-negative")
	}
	return amount
}

func resolveCategory(ctx context.Context, a *app, id int) domain.Category {
	log := logger.FromContext(ctx)
	category, err := a.categories.ByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Int("category_id", id).Msg("Category unresolved, using offline placeholder")
		return domain.OfflineCategory(id, false)
	}
	return category
}

func findTransaction(ctx context.Context, log zerolog.Logger, a *app, id int) domain.Transaction {
	pending, err := a.engine.Pending(ctx)
	if err == nil {
		for _, op := range pending {
			if op.ID == id && op.Action != domain.BackupDelete {
				return op.Transaction
			}
		}
	}
	// A wide window keeps the lookup simple; the engine serves local data
	// when the server is unreachable.
	txs, err := a.engine.Get(ctx, time.Time{}, time.Now().AddDate(1, 0, 0))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load transactions")
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx
		}
	}
	log.Fatal().Int("id", id).Msg("Transaction not found")
	return domain.Transaction{}
}
