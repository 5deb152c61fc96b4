package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/hyunsoolee/jangbu-api/internal/models"
	"github.com/hyunsoolee/jangbu-api/internal/services"
)

// LedgerIngestor runs the upload pipeline end to end.
type LedgerIngestor interface {
	Ingest(ctx context.Context, req services.IngestRequest) (services.IngestResult, error)
}

// MappingSource loads a saved column-mapping profile for its owner.
type MappingSource interface {
	GetMapping(ctx context.Context, userID string, id uuid.UUID) (*models.ColumnMapping, error)
}

// WorkbookArchiver keeps the original workbook bytes after a successful
// ingest. Archiving is best effort and never fails the upload.
type WorkbookArchiver interface {
	Archive(ctx context.Context, t models.LedgerType, filename string, data []byte) (string, error)
}

// UploadHandler handles ledger workbook uploads
type UploadHandler struct {
	ingestor LedgerIngestor
	mappings MappingSource
	archive  WorkbookArchiver
	log      *slog.Logger
}

// NewUploadHandler creates a new upload handler instance. archive may be nil
// when no bucket is configured.
func NewUploadHandler(ingestor LedgerIngestor, mappings MappingSource, archive WorkbookArchiver, log *slog.Logger) *UploadHandler {
	return &UploadHandler{
		ingestor: ingestor,
		mappings: mappings,
		archive:  archive,
		log:      log,
	}
}

// UploadLedger ingests one spreadsheet into the unconfirmed batch of a ledger.
// POST /v1/ledger/:type/upload
// Multipart fields: file (required), password, mappingId, mapDate, mapItem,
// mapAmount, mapCategory, mapPayment, mapNote, filterMode, filterExclude,
// filterInclude.
func (h *UploadHandler) UploadLedger(c fiber.Ctx) error {
	// 1. Resolve the ledger type from the path
	ledgerType, ok := parseLedgerType(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be sales or purchase",
		})
	}

	// 2. Read the uploaded workbook
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": services.ErrNoFile.Error(),
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	// 3. Start from a saved mapping profile when one was selected
	hints := services.ColumnHints{}
	filterExclude := c.FormValue("filterExclude")
	filterInclude := c.FormValue("filterInclude")

	if mappingID := c.FormValue("mappingId"); mappingID != "" {
		userID, ok := c.Locals("user_id").(string)
		if !ok || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized - user_id not found",
			})
		}
		id, err := uuid.Parse(mappingID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "mappingId must be a valid UUID",
			})
		}
		mapping, err := h.mappings.GetMapping(c.Context(), userID, id)
		if err != nil {
			h.log.Error("load mapping profile", "mapping_id", id, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load mapping profile",
			})
		}
		if mapping == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "mapping profile not found",
			})
		}
		hints = services.ColumnHints{
			Date:     mapping.ColDate,
			Item:     mapping.ColItem,
			Amount:   mapping.ColAmount,
			Category: mapping.ColCategory,
			Payment:  mapping.ColPayment,
			Note:     mapping.ColNote,
		}
		if filterExclude == "" {
			filterExclude = mapping.FilterExclude
		}
		if filterInclude == "" {
			filterInclude = mapping.FilterInclude
		}
	}

	// 4. Inline hints override the profile
	overrideHint(&hints.Date, c.FormValue("mapDate"))
	overrideHint(&hints.Item, c.FormValue("mapItem"))
	overrideHint(&hints.Amount, c.FormValue("mapAmount"))
	overrideHint(&hints.Category, c.FormValue("mapCategory"))
	overrideHint(&hints.Payment, c.FormValue("mapPayment"))
	overrideHint(&hints.Note, c.FormValue("mapNote"))

	// 5. Run the pipeline
	result, err := h.ingestor.Ingest(c.Context(), services.IngestRequest{
		Type:          ledgerType,
		FileName:      fileHeader.Filename,
		File:          data,
		Password:      c.FormValue("password"),
		Hints:         hints,
		FilterMode:    models.FilterMode(c.FormValue("filterMode")),
		FilterExclude: filterExclude,
		FilterInclude: filterInclude,
	})
	if err != nil {
		return h.ingestError(c, err)
	}

	// 6. Keep the original workbook for later dispute resolution
	if h.archive != nil {
		if key, err := h.archive.Archive(c.Context(), ledgerType, fileHeader.Filename, data); err != nil {
			h.log.Error("archive workbook", "file", fileHeader.Filename, "error", err)
		} else if key != "" {
			h.log.Info("workbook archived", "key", key)
		}
	}

	return c.JSON(fiber.Map{
		"inserted": result.Inserted,
	})
}

// ingestError maps pipeline failures to responses the user can act on.
func (h *UploadHandler) ingestError(c fiber.Ctx, err error) error {
	var missing *services.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      missing.Error(),
			"header_row": missing.HeaderRow + 1,
			"headers":    missing.Headers,
			"missing":    missing.Missing,
		})
	case errors.Is(err, services.ErrNoFile),
		errors.Is(err, services.ErrEmptySheet),
		errors.Is(err, services.ErrDecryptionFailed),
		errors.Is(err, services.ErrNoValidRows):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	h.log.Error("ingest upload", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "failed to process upload",
	})
}

func overrideHint(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
