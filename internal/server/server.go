package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/tabilog-dev/receipt-engine/internal/core"
	"github.com/tabilog-dev/receipt-engine/internal/core/async"
	"github.com/tabilog-dev/receipt-engine/internal/export"
	"github.com/tabilog-dev/receipt-engine/internal/store"
)

// Server exposes the extraction pipeline over HTTP.
type Server struct {
	proc   *core.Processor
	queue  *async.ScanQueue
	store  store.Store
	export *export.Service
	logger *slog.Logger
}

func New(proc *core.Processor, queue *async.ScanQueue, st store.Store, exp *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		proc:   proc,
		queue:  queue,
		store:  st,
		export: exp,
		logger: logger,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/receipts/extract", s.extractReceipt)
		v1.POST("/receipts/scan", s.scanReceipt)
		v1.GET("/receipts", s.listReceipts)
		v1.GET("/receipts/:id", s.getReceipt)
		v1.DELETE("/receipts/:id", s.deleteReceipt)
		v1.GET("/export.xlsx", s.exportReceipts)
	}

	return r
}
