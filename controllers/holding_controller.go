package controllers

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"portfolioadvisor/middleware"
	"portfolioadvisor/services"
	"portfolioadvisor/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HoldingControllerI interface {
	GetHoldings(ctx *gin.Context)
	AddHolding(ctx *gin.Context)
	UpdateHolding(ctx *gin.Context)
	DeleteHolding(ctx *gin.Context)
	ImportHoldings(ctx *gin.Context)
}

type holdingController struct {
	holdings services.HoldingServiceI
	importer services.ImportServiceI
}

func NewHoldingController(holdings services.HoldingServiceI, importer services.ImportServiceI) HoldingControllerI {
	return &holdingController{holdings: holdings, importer: importer}
}

func userID(ctx *gin.Context) string {
	return ctx.GetString(middleware.UserIDKey)
}

func (h *holdingController) GetHoldings(ctx *gin.Context) {
	holdings, err := h.holdings.ListHoldings(ctx, userID(ctx))
	if err != nil {
		zap.L().Error("Error listing holdings", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while fetching holdings"})
		return
	}
	ctx.JSON(200, gin.H{"holdings": holdings})
}

type addHoldingRequest struct {
	Symbol       string     `json:"symbol" binding:"required"`
	Name         string     `json:"name"`
	ISIN         string     `json:"isin"`
	Exchange     string     `json:"exchange"`
	Shares       int64      `json:"shares" binding:"required,gt=0"`
	AvgCost      float64    `json:"avgCost" binding:"required,gt=0"`
	HoldingSince *time.Time `json:"holdingSince"`
}

func (h *holdingController) AddHolding(ctx *gin.Context) {
	var req addHoldingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}

	holding := types.Holding{
		UserID:   userID(ctx),
		Symbol:   req.Symbol,
		Name:     req.Name,
		ISIN:     req.ISIN,
		Exchange: req.Exchange,
		Shares:   req.Shares,
		AvgCost:  req.AvgCost,
	}
	if req.HoldingSince != nil {
		holding.HoldingSince = *req.HoldingSince
	}

	created, err := h.holdings.AddHolding(ctx, holding)
	if errors.Is(err, services.ErrDuplicateHolding) {
		ctx.JSON(400, gin.H{"error": "Holding for this symbol already exists"})
		return
	}
	if err != nil {
		zap.L().Error("Error adding holding", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while adding holding"})
		return
	}
	ctx.JSON(201, created)
}

func (h *holdingController) UpdateHolding(ctx *gin.Context) {
	var update services.HoldingUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.holdings.UpdateHolding(ctx, userID(ctx), ctx.Param("id"), update)
	if errors.Is(err, services.ErrHoldingNotFound) {
		ctx.JSON(404, gin.H{"error": "Holding not found"})
		return
	}
	if err != nil {
		zap.L().Error("Error updating holding", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while updating holding"})
		return
	}
	ctx.JSON(200, updated)
}

func (h *holdingController) DeleteHolding(ctx *gin.Context) {
	err := h.holdings.DeleteHolding(ctx, userID(ctx), ctx.Param("id"))
	if errors.Is(err, services.ErrHoldingNotFound) {
		ctx.JSON(404, gin.H{"error": "Holding not found"})
		return
	}
	if err != nil {
		zap.L().Error("Error deleting holding", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while deleting holding"})
		return
	}
	ctx.JSON(200, gin.H{"message": "Holding deleted"})
}

func (h *holdingController) ImportHoldings(ctx *gin.Context) {
	// Parse the form and retrieve the uploaded files
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(400, gin.H{"error": "Error parsing form data"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		ctx.JSON(400, gin.H{"error": "No files found"})
		return
	}

	uploadDir := "./uploads"
	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		ctx.JSON(500, gin.H{"error": "Error creating upload directory"})
		return
	}
	var savedFilePaths = make(chan string, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			ctx.JSON(500, gin.H{"error": "Error opening file"})
			return
		}
		defer src.Close()

		filename := filepath.Base(file.Filename)
		savePath := filepath.Join(uploadDir, filename)

		dst, err := os.Create(savePath)
		if err != nil {
			ctx.JSON(500, gin.H{"error": "Error creating file on server"})
			return
		}
		defer dst.Close()

		if _, err := io.Copy(dst, src); err != nil {
			ctx.JSON(500, gin.H{"error": "Error saving file"})
			return
		}

		savedFilePaths <- savePath
	}
	close(savedFilePaths)

	// Set headers for chunked transfer
	ctx.Writer.Header().Set("Content-Type", "text/plain")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	err = h.importer.ImportHoldings(ctx, userID(ctx), savedFilePaths, ctx.Request.Context())
	if err != nil {
		ctx.JSON(500, gin.H{"error": err.Error()})
		return
	}

	ctx.Writer.Write([]byte("\nStream complete.\n"))
	ctx.Writer.Flush()
}
