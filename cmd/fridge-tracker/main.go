package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/fridgelab/fridge-tracker/internal/fridge"
	"github.com/fridgelab/fridge-tracker/internal/refining"
	"github.com/fridgelab/fridge-tracker/internal/scanning"
	"github.com/fridgelab/fridge-tracker/internal/suggesting"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("fridge-tracker")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		fridgesPath   = fs.StringLong("fridges", "data/all_fridges.json", "Fridge records file path")
		historyPath   = fs.StringLong("history", "fridge-history.db", "History database file path")
		storagePath   = fs.StringLong("storage", "./receipts", "Receipt image storage directory")
		tabscannerURL = fs.StringLong("tabscanner-url", "", "Tabscanner API base URL (default production)")
		tabscannerKey = fs.StringLong("tabscanner-key", "", "Tabscanner API key (or set TABSCANNER_API_KEY env var)")
		pollAttempts  = fs.IntLong("poll-attempts", 2, "Maximum OCR poll attempts per scan")
		pollInterval  = fs.DurationLong("poll-interval", 20*time.Second, "Wait between OCR poll attempts")
		refinerType   = fs.StringLong("refiner", "ollama", "Item refiner: 'ollama', 'gemini' or 'local'")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llama3.2", "Ollama model name")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		suggestModel  = fs.StringLong("suggest-model", "llama3.2", "Ollama model for recipe suggestions ('' disables)")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		scanUser      = fs.StringLong("scan-user", "", "One-shot mode: user to scan a receipt for")
		scanImage     = fs.StringLong("scan-image", "", "One-shot mode: receipt image path to scan, then exit")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("FRIDGE_TRACKER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize the OCR scanner
	apiKey := *tabscannerKey
	if apiKey == "" {
		apiKey = os.Getenv("TABSCANNER_API_KEY")
	}
	if apiKey == "" {
		slog.Error("Tabscanner API key is required. Set --tabscanner-key flag or TABSCANNER_API_KEY environment variable")
		os.Exit(1)
	}
	scanner, err := scanning.NewTabscanner(*tabscannerURL, apiKey, *pollAttempts, *pollInterval)
	if err != nil {
		slog.Error("Failed to initialize Tabscanner", "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	// Initialize the item refiner based on type
	var remote refining.Refiner
	switch *refinerType {
	case "ollama":
		slog.Info("Initializing Ollama refiner...", "url", *ollamaURL, "model", *ollamaModel)
		remote, err = refining.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama refiner", "error", err)
			os.Exit(1)
		}
	case "gemini":
		key := *geminiKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		if key == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini refiner...", "model", *geminiModel)
		remote, err = refining.NewGemini(key, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini refiner", "error", err)
			os.Exit(1)
		}
	case "local":
		slog.Info("Using local item cleanup only")
	default:
		slog.Error("Invalid refiner type", "type", *refinerType, "valid", "ollama, gemini or local")
		os.Exit(1)
	}
	refiner := refining.NewService(remote)
	defer refiner.Close()

	// Initialize persistence
	store, err := fridge.NewFileStore(*fridgesPath)
	if err != nil {
		slog.Error("Failed to initialize fridge store", "error", err)
		os.Exit(1)
	}

	slog.Info("Initializing history database...")
	history, err := fridge.NewBoltHistory(*historyPath)
	if err != nil {
		slog.Error("Failed to initialize history database", "error", err)
		os.Exit(1)
	}
	defer history.Close()

	imageStore, err := fridge.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	service := fridge.NewService(store, scanner, refiner, history, imageStore)

	// One-shot mode: scan a local receipt image and exit
	if *scanImage != "" {
		user := *scanUser
		if user == "" {
			slog.Error("--scan-user is required with --scan-image")
			os.Exit(1)
		}
		f, items, err := service.ScanReceiptFile(user, *scanImage)
		if err != nil {
			slog.Error("Scan failed", "image", *scanImage, "error", err)
			os.Exit(1)
		}
		slog.Info("Scan complete", "user", user, "new_items", len(items), "fridge_items", len(f.Inventory))
		for name, qty := range f.Inventory {
			fmt.Printf("%-30s %g\n", name, qty)
		}
		return
	}

	// Initialize recipe suggestions
	var suggester fridge.Suggester
	if *suggestModel != "" {
		s, err := suggesting.NewOllama(*ollamaURL, *suggestModel)
		if err != nil {
			slog.Error("Failed to initialize suggester", "error", err)
			os.Exit(1)
		}
		suggester = s
	}

	basicAuth := fridge.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := fridge.NewServer(service, suggester, basicAuth)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
