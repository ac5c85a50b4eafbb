package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/middleware"
	"github.com/noah-isme/storehouse-api/internal/models"
)

// Handlers groups every HTTP handler mounted by Register.
type Handlers struct {
	Auth      *AuthHandler
	Kiosk     *KioskHandler
	Students  *StudentHandler
	Ledger    *LedgerHandler
	Items     *ItemHandler
	Settings  *SettingsHandler
	Transfer  *TransferHandler
	Cards     *CardHandler
	Reports   *ReportHandler
	Backups   *BackupHandler
	Metrics   *MetricsHandler
	Validator middleware.TokenValidator
	Logger    *zap.Logger
}

// Register mounts the public kiosk routes, the admin routes behind the
// session check and the operational endpoints.
func Register(r *gin.Engine, prefix string, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/qr/:file", h.Cards.QRCode)

	api := r.Group(prefix)

	kiosk := api.Group("/kiosk")
	kiosk.GET("/students", h.Kiosk.Roster)
	kiosk.GET("/items", h.Kiosk.Items)
	kiosk.GET("/labels", h.Settings.Labels)
	kiosk.GET("/s/:qr_id", h.Kiosk.Page)
	kiosk.POST("/s/:qr_id/earn", h.Kiosk.Earn)
	kiosk.POST("/s/:qr_id/buy", h.Kiosk.Buy)
	kiosk.POST("/s/:qr_id/group-buy", h.Kiosk.GroupBuy)
	kiosk.POST("/s/:qr_id/convert", h.Kiosk.Convert)

	api.POST("/admin/login", h.Auth.Login)
	api.GET("/backups/download", h.Backups.Download)

	admin := api.Group("/admin", middleware.JWT(h.Validator), middleware.RequireRole(models.RoleAdmin), middleware.Audit(h.Logger))
	admin.GET("/session", h.Auth.Me)

	admin.GET("/students", h.Students.List)
	admin.POST("/students", h.Students.Create)
	admin.DELETE("/students", h.Students.BulkDelete)
	admin.GET("/students/:id", h.Students.Get)
	admin.PUT("/students/:id", h.Students.Update)
	admin.GET("/students/:id/transactions", h.Students.Transactions)
	admin.POST("/students/:id/token", h.Students.RegenerateToken)
	admin.POST("/students/:id/earn", h.Ledger.Earn)
	admin.POST("/students/:id/adjust", h.Ledger.Adjust)
	admin.POST("/students/:id/undo", h.Ledger.Undo)
	admin.POST("/awards", h.Ledger.BulkAward)

	admin.GET("/items", h.Items.List)
	admin.POST("/items", h.Items.Create)
	admin.GET("/items/:id", h.Items.Get)
	admin.PUT("/items/:id", h.Items.Update)
	admin.DELETE("/items/:id", h.Items.Delete)

	admin.GET("/settings", h.Settings.Get)
	admin.PUT("/settings/economy", h.Settings.UpdateEconomy)
	admin.PUT("/settings/labels", h.Settings.UpdateLabels)

	admin.GET("/export", h.Transfer.Export)
	admin.POST("/import", h.Transfer.Import)

	admin.GET("/cards.pdf", h.Cards.Cards)
	admin.GET("/reports/transactions.csv", h.Reports.TransactionsCSV)
	admin.GET("/reports/transactions.pdf", h.Reports.TransactionsPDF)

	admin.POST("/backups", h.Backups.Create)
	admin.GET("/backups", h.Backups.List)
	admin.GET("/backups/jobs/:id", h.Backups.Status)
}
