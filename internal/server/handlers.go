package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tabilog-dev/receipt-engine/internal/common"
	"github.com/tabilog-dev/receipt-engine/internal/core/async"
	"github.com/tabilog-dev/receipt-engine/internal/engine"
	"github.com/tabilog-dev/receipt-engine/internal/strategy"
)

// maxScanBytes caps uploaded receipt images at 10 MiB.
const maxScanBytes = 10 << 20

type extractRequest struct {
	Fields       []engine.OcrField `json:"fields"`
	Text         string            `json:"text"`
	ExchangeRate float64           `json:"exchange_rate"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) extractReceipt(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := strategy.Input{Fields: req.Fields, Text: req.Text}
	enriched, err := s.proc.ExtractAndEnrich(c.Request.Context(), in, req.ExchangeRate)
	if err != nil {
		s.renderExtractError(c, err)
		return
	}

	c.JSON(http.StatusOK, enriched)
}

func (s *Server) renderExtractError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no ocr fields or receipt text provided"})
		return
	}

	var chainErr *strategy.ChainError
	if errors.As(err, &chainErr) {
		attempts := make([]gin.H, 0, len(chainErr.Attempts))
		for _, a := range chainErr.Attempts {
			attempts = append(attempts, gin.H{"strategy": a.Strategy, "error": a.Err.Error()})
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "could not read this receipt",
			"attempts": attempts,
		})
		return
	}

	s.logger.Error("server.extract.failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

type scanForm struct {
	ExchangeRate float64 `form:"exchange_rate"`
}

func (s *Server) scanReceipt(c *gin.Context) {
	if s.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scanning is not configured"})
		return
	}

	var form scanForm
	_ = c.ShouldBind(&form)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > maxScanBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded image"})
		return
	}
	defer f.Close()

	img, err := io.ReadAll(io.LimitReader(f, maxScanBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded image"})
		return
	}

	job := async.ScanJob{
		ID:           uuid.New(),
		Image:        img,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		ExchangeRate: form.ExchangeRate,
	}
	if err := s.queue.Enqueue(c.Request.Context(), job); err != nil {
		s.logger.Error("server.scan.enqueue_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID.String()})
}

func (s *Server) listReceipts(c *gin.Context) {
	records, err := s.store.List()
	if err != nil {
		s.logger.Error("server.receipts.list_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": records})
}

func (s *Server) getReceipt(c *gin.Context) {
	rec, err := s.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
			return
		}
		s.logger.Error("server.receipts.get_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteReceipt(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
			return
		}
		s.logger.Error("server.receipts.delete_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) exportReceipts(c *gin.Context) {
	data, err := s.export.ExportReceiptsXLSX()
	if err != nil {
		s.logger.Error("server.export.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="receipts.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
