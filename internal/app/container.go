// Package app wires repositories and services shared by the HTTP server and
// the data maintenance command.
package app

import (
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/repository"
	"github.com/noah-isme/storehouse-api/internal/service"
	"github.com/noah-isme/storehouse-api/pkg/config"
)

// Container holds the constructed services.
type Container struct {
	Metrics    *service.MetricsService
	Cache      *service.CacheService
	Settings   *service.SettingsService
	Students   *service.StudentService
	Items      *service.ItemService
	Ledger     *service.LedgerService
	Purchases  *service.PurchaseService
	GroupBuys  *service.GroupBuyService
	Conversion *service.ConversionService
	Kiosk      *service.KioskService
	Transfer   *service.TransferService
	Seed       *service.SeedService

	StudentRepo     *repository.StudentRepository
	TransactionRepo *repository.TransactionRepository
}

// New builds every service on top of db. A nil redis client disables the
// catalog cache.
func New(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, metrics *service.MetricsService, logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	itemRepo := repository.NewItemRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	talentRepo := repository.NewTalentRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	transferRepo := repository.NewTransferRepository(db)

	// typed nil must not reach the interface
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logger)
	}
	cache := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logger, redisClient != nil)

	settings := service.NewSettingsService(settingRepo, validate, logger)
	students := service.NewStudentService(studentRepo, transactionRepo, validate, logger)
	items := service.NewItemService(itemRepo, cache, validate, logger)
	ledger := service.NewLedgerService(ledgerRepo, transactionRepo, studentRepo, settings, service.NewRandomSource(), metrics, validate, logger)

	return &Container{
		Metrics:         metrics,
		Cache:           cache,
		Settings:        settings,
		Students:        students,
		Items:           items,
		Ledger:          ledger,
		Purchases:       service.NewPurchaseService(ledgerRepo, cache, metrics, logger),
		GroupBuys:       service.NewGroupBuyService(ledgerRepo, cache, metrics, logger),
		Conversion:      service.NewConversionService(ledgerRepo, settings, metrics, logger),
		Kiosk:           service.NewKioskService(studentRepo, talentRepo, items, settings, transactionRepo, logger),
		Transfer:        service.NewTransferService(transferRepo, cache, logger),
		Seed:            service.NewSeedService(studentRepo, students, items, ledger, logger),
		StudentRepo:     studentRepo,
		TransactionRepo: transactionRepo,
	}
}
