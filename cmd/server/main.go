package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cverve/internal/auth"
	"cverve/internal/config"
	"cverve/internal/extraction"
	"cverve/internal/extraction/docx"
	"cverve/internal/extraction/ocr"
	"cverve/internal/extraction/pdf"
	"cverve/internal/extraction/preprocess"
	"cverve/internal/handler"
	"cverve/internal/lock"
	"cverve/internal/parser"
	"cverve/internal/parser/claude"
	"cverve/internal/parser/gemini"
	"cverve/internal/parser/openai"
	"cverve/internal/port"
	"cverve/internal/repository/postgres"
	"cverve/internal/router"
	"cverve/internal/service"
	s3storage "cverve/internal/storage/s3"
	"cverve/internal/validator"
	"cverve/internal/validator/payment"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	paymentRepo := postgres.NewPaymentRepo(db)

	locker, closeLocker, err := newLocker(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize payment lock: %w", err)
	}
	defer closeLocker()

	storage, err := newProofStorage(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Claim parsers
	prompt := parser.ClaimPrompt{
		BankName:          cfg.Payment.BankName,
		TransactionPrefix: cfg.Payment.TransactionPrefix,
		AcceptedReceivers: cfg.Payment.AcceptedReceivers,
	}
	registerParsers(prompt)
	claimParser, err := parser.NewChain(cfg.Parser.Providers())
	if err != nil {
		return fmt.Errorf("failed to initialize claim parser: %w", err)
	}

	// OCR and extraction pipeline
	runner := ocr.ExecRunner{}
	tesseract := ocr.NewTesseract(cfg.OCR.Tesseract, cfg.OCR.TessdataDir, runner)
	pre := preprocess.New(preprocess.Options{
		MaxDimension:  cfg.OCR.MaxDimension,
		ContrastBoost: cfg.OCR.ContrastBoost,
		SharpenSigma:  cfg.OCR.SharpenSigma,
	})
	ocrOpts := port.OCROptions{Language: cfg.OCR.Language, PSM: cfg.OCR.PSM, OEM: cfg.OCR.OEM}
	imageExtractor := ocr.NewImageExtractor(tesseract, pre, ocrOpts, cfg.OCR.Timeout())

	extractors := extraction.Extractors{
		PDF:      pdf.NewExtractor(),
		Document: docx.NewExtractor(),
		Image:    imageExtractor,
	}
	if cfg.OCR.RenderPDFs {
		renderer := ocr.NewPdftoppmRenderer(cfg.OCR.Pdftoppm, cfg.OCR.DPI, cfg.OCR.MaxPages, runner)
		extractors.PDFFallback = ocr.NewPDFExtractor(renderer, imageExtractor)
	}
	orchestrator := extraction.NewOrchestrator(
		extractors,
		extraction.NewContentValidator(cfg.Extraction.MinTextChars, cfg.Extraction.MinAlnumRatio),
		extraction.OrchestratorConfig{PDFMinChars: cfg.Extraction.PDFMinChars, FileTimeout: cfg.Extraction.FileTimeout()},
	)
	aggregator := extraction.NewAggregator(orchestrator, extraction.AggregatorConfig{
		Concurrency:    cfg.Extraction.Concurrency,
		RequestTimeout: cfg.Extraction.RequestTimeout(),
	})

	engine := validator.NewEngine(payment.Rules{
		AcceptedReceivers: cfg.Payment.AcceptedReceivers,
		MinimumAmount:     cfg.Payment.MinimumAmount,
		TransactionPrefix: cfg.Payment.TransactionPrefix,
		Currency:          cfg.Payment.Currency,
		BankName:          cfg.Payment.BankName,
	})

	// Initialize services
	extractionSvc := service.NewExtractionService(aggregator, service.ExtractionServiceConfig{
		MaxFiles:      cfg.Extraction.MaxFiles,
		MinBatchChars: cfg.Extraction.MinBatchChars,
	})
	ledger := service.NewPaymentLedger(paymentRepo, locker)
	paymentSvc := service.NewPaymentService(claimParser, imageExtractor, engine, ledger, storage, service.PaymentServiceConfig{
		TransactionPrefix: cfg.Payment.TransactionPrefix,
		AcceptedReceivers: cfg.Payment.AcceptedReceivers,
		ExtractTimeout:    cfg.Payment.ExtractTimeout(),
		Bucket:            cfg.S3.Bucket,
		ProofKeyPrefix:    cfg.Payment.ProofKeyPrefix,
	})
	userSvc := service.NewUserService(userRepo)
	exportSvc := service.NewExportService(paymentRepo)

	verifier, err := auth.NewTokenVerifier(&cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc)
	paymentH := handler.NewPaymentHandler(paymentSvc, exportSvc)
	userH := handler.NewUserHandler(userSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyMB << 20,
	}, verifier, extractionH, paymentH, userH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func registerParsers(prompt parser.ClaimPrompt) {
	parser.RegisterProvider("openai", func(cfg *config.ParserProviderConfig) (port.ClaimParser, error) {
		return openai.NewParser(cfg, prompt), nil
	})
	parser.RegisterProvider("gemini", func(cfg *config.ParserProviderConfig) (port.ClaimParser, error) {
		return gemini.NewParser(cfg, prompt), nil
	})
	parser.RegisterProvider("claude", func(cfg *config.ParserProviderConfig) (port.ClaimParser, error) {
		return claude.NewParser(cfg, prompt), nil
	})
}

// newLocker selects the redis lock when an address is configured, else the in-process lock.
func newLocker(cfg *config.RedisConfig) (port.KeyedLocker, func(), error) {
	if cfg.Addr == "" {
		log.Printf("main: redis not configured, using in-process payment lock")
		return lock.NewMemory(), func() {}, nil
	}
	client, err := lock.NewRedisClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return lock.NewRedis(client, cfg.LockPrefix, cfg.LockTTL), func() { _ = client.Close() }, nil
}

func newProofStorage(cfg *config.S3Config) (port.ObjectStorage, error) {
	if cfg.Bucket == "" {
		log.Printf("main: s3 bucket not configured, payment proofs will not be archived")
		return s3storage.NewNoop(), nil
	}
	return s3storage.NewS3Client(cfg)
}
