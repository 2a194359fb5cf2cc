package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	kafka_client "portfolioadvisor/clients/kafka"
	rabbitmq_client "portfolioadvisor/clients/rabbitmq"
	"portfolioadvisor/types"
	"portfolioadvisor/utils/helpers"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ImportServiceI interface {
	ImportHoldings(ctx *gin.Context, userID string, files <-chan string, sentryCtx context.Context) error
}

type importService struct {
	holdings HoldingServiceI
}

func NewImportService(holdings HoldingServiceI) ImportServiceI {
	return &importService{holdings: holdings}
}

// ImportHoldings parses broker statements in XLSX form, streams each parsed
// position back as NDJSON, and upserts the batch into the user's holdings.
// Uploaded files are archived to Cloudinary before parsing.
func (is *importService) ImportHoldings(ctx *gin.Context, userID string, files <-chan string, sentryCtx context.Context) error {
	defer sentry.Recover()
	span := sentry.StartSpan(sentryCtx, "[DAO] ImportHoldings")
	defer span.Finish()

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return fmt.Errorf("error initializing Cloudinary: %w", err)
	}

	for filePath := range files {
		file, err := os.Open(filePath)
		if err != nil {
			sentry.CaptureException(err)
			zap.L().Error("Error opening file", zap.String("filePath", filePath), zap.Error(err))
			removeFile(filePath)
			continue
		}
		defer file.Close()

		cloudinaryFilename := uuid.New().String() + ".xlsx"
		uploadSpan := sentry.StartSpan(span.Context(), "[DB] Upload holdings statement")
		uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
			PublicID: cloudinaryFilename,
			Folder:   "holdings_uploads",
		})
		uploadSpan.Finish()
		if err != nil {
			zap.L().Error("Error uploading file to Cloudinary", zap.String("filePath", filePath), zap.Error(err))
			sentry.CaptureException(err)
			continue
		}
		zap.L().Info("Statement archived to Cloudinary", zap.String("filePath", filePath), zap.String("url", uploadResult.SecureURL))

		if _, err := file.Seek(0, 0); err != nil {
			zap.L().Error("Error seeking file", zap.String("filePath", filePath), zap.Error(err))
			sentry.CaptureException(err)
			return err
		}

		f, err := excelize.OpenReader(file)
		if err != nil {
			sentry.CaptureException(err)
			zap.L().Error("Error parsing XLSX file", zap.String("filePath", filePath), zap.Error(err))
			removeFile(filePath)
			continue
		}
		defer f.Close()

		parsed := []types.Holding{}
		for _, sheet := range f.GetSheetList() {
			zap.L().Info("Processing sheet", zap.String("filePath", filePath), zap.String("sheet", sheet))

			rows, err := f.GetRows(sheet)
			if err != nil {
				sentry.CaptureException(err)
				zap.L().Error("Error reading rows from sheet", zap.String("sheet", sheet), zap.Error(err))
				continue
			}
			parsed = append(parsed, parseHoldingRows(rows)...)
		}

		for _, holding := range parsed {
			line, err := json.Marshal(holding)
			if err != nil {
				zap.L().Error("Error marshalling holding", zap.Error(err))
				sentry.CaptureException(err)
				continue
			}
			if _, err := ctx.Writer.Write(append(line, '\n')); err != nil {
				sentry.CaptureException(err)
				zap.L().Error("Error writing data", zap.Error(err))
				break
			}
			ctx.Writer.Flush()
		}

		if len(parsed) > 0 {
			dbSpan := sentry.StartSpan(span.Context(), "[DB] Upsert imported holdings")
			written, err := is.holdings.UpsertHoldings(ctx, userID, parsed)
			dbSpan.Finish()
			if err != nil {
				zap.L().Error("Error upserting imported holdings", zap.Error(err))
				sentry.CaptureException(err)
			} else {
				zap.L().Info("Imported holdings", zap.Int("written", written), zap.String("userId", userID))
				publishImportEvent(userID, parsed)
			}
		}

		removeFile(filePath)
	}

	return nil
}

// parseHoldingRows locates the header row by its symbol column, then reads
// position rows until a subtotal/total marker.
func parseHoldingRows(rows [][]string) []types.Holding {
	headerFound := false
	headerMap := make(map[string]int)
	holdings := []types.Holding{}

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}

		if !headerFound {
			for _, cell := range row {
				if helpers.MatchHeader(cell, []string{`symbol`, `ticker`, `scrip`}) {
					headerFound = true
					for i, headerCell := range row {
						normalizedHeader := helpers.NormalizeString(headerCell)
						switch {
						case helpers.MatchHeader(normalizedHeader, []string{`symbol`, `ticker`, `scrip`}):
							headerMap["Symbol"] = i
						case helpers.MatchHeader(normalizedHeader, []string{`name\s*of\s*(the)?\s*instrument`, `instrument`, `company`, `^name$`}):
							headerMap["Name"] = i
						case helpers.MatchHeader(normalizedHeader, []string{`isin`}):
							headerMap["ISIN"] = i
						case helpers.MatchHeader(normalizedHeader, []string{`quantity`, `^qty`, `shares`}):
							headerMap["Quantity"] = i
						case helpers.MatchHeader(normalizedHeader, []string{`avg.*cost`, `average\s*(buy)?\s*price`, `buy\s*price`}):
							headerMap["Avg Cost"] = i
						case helpers.MatchHeader(normalizedHeader, []string{`exchange`}):
							headerMap["Exchange"] = i
						}
					}
					break
				}
			}
			continue
		}

		joinedRow := strings.ToLower(strings.Join(row, ""))
		if strings.Contains(joinedRow, "subtotal") || strings.Contains(joinedRow, "total") {
			break
		}

		holding := types.Holding{
			Symbol:       cellAt(row, headerMap, "Symbol"),
			Name:         cellAt(row, headerMap, "Name"),
			ISIN:         cellAt(row, headerMap, "ISIN"),
			Exchange:     cellAt(row, headerMap, "Exchange"),
			Shares:       helpers.ToShares(cellAt(row, headerMap, "Quantity")),
			AvgCost:      helpers.ToFloat(cellAt(row, headerMap, "Avg Cost")),
			HoldingSince: time.Now().UTC(),
		}
		if holding.Symbol == "" || holding.Shares <= 0 {
			continue
		}
		holding.Symbol = strings.ToUpper(strings.TrimSpace(holding.Symbol))
		holdings = append(holdings, holding)
	}

	return holdings
}

func cellAt(row []string, headerMap map[string]int, key string) string {
	idx, ok := headerMap[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func publishImportEvent(userID string, holdings []types.Holding) {
	symbols := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		symbols = append(symbols, holding.Symbol)
	}
	event := types.PortfolioEvent{
		Event:     "holdings_imported",
		UserID:    userID,
		Symbols:   symbols,
		Timestamp: time.Now().UTC(),
	}
	kafka_client.SendMessage(event)
	rabbitmq_client.SendMessage(event)
}

func removeFile(filePath string) {
	if err := os.Remove(filePath); err != nil {
		zap.L().Error("Error removing file", zap.String("filePath", filePath), zap.Error(err))
		return
	}
	zap.L().Info("File removed successfully", zap.String("filePath", filePath))
}
