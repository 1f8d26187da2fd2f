package ingest

import (
	"io"
	"math"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ptdat2/Magpie/internal/dto"
	"github.com/ptdat2/Magpie/internal/service"
	"github.com/rs/zerolog/log"
)

// IngestController exposes the write side of the pipeline: batch ingestion,
// file uploads and the data reset.
type IngestController struct {
	ingestService service.IngestService
	uploadService service.UploadService
}

func NewIngestController(ingestService service.IngestService, uploadService service.UploadService) *IngestController {
	return &IngestController{
		ingestService: ingestService,
		uploadService: uploadService,
	}
}

// IngestAttempts godoc
// @Summary Ingest a batch of attempt events
// @Description Run each event through identity resolution, duplicate detection and scoring. The batch always answers 200; per-event outcomes are in results.
// @Tags Ingest
// @Accept json
// @Produce json
// @Param batch body dto.IngestRequest true "Attempt events"
// @Success 200 {object} dto.IngestResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed request body"
// @Router /ingest/attempts [post]
func (c *IngestController) IngestAttempts(ctx *gin.Context) {
	var req dto.IngestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("IngestAttempts: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp := c.ingestService.IngestBatch(ctx.Request.Context(), req.Events)
	ctx.JSON(http.StatusOK, resp)
}

// AnalyzeUpload godoc
// @Summary Analyze an uploaded file
// @Description Parse a .json or .csv file of attempt events and return a profile of its contents plus the parsed events, without ingesting anything.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Events file (.json or .csv)"
// @Success 200 {object} dto.UploadAnalyzeResponse
// @Failure 400 {object} dto.ErrorResponse "Missing file or unparseable contents"
// @Router /upload/analyze [post]
func (c *IngestController) AnalyzeUpload(ctx *gin.Context) {
	filename, content, ok := uploadedFile(ctx)
	if !ok {
		return
	}

	events, err := c.uploadService.ParseFile(filename, content)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Could not parse file", Details: []string{err.Error()}})
		return
	}

	analysis := c.uploadService.Analyze(events)
	analysis.Filename = filename
	analysis.FileSizeKB = math.Round(float64(len(content))/1024*10) / 10
	ctx.JSON(http.StatusOK, dto.UploadAnalyzeResponse{Analysis: analysis, Events: events})
}

// IngestUpload godoc
// @Summary Ingest an uploaded file
// @Description Parse a .json or .csv file of attempt events and run every event through the ingestion pipeline.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Events file (.json or .csv)"
// @Success 200 {object} dto.IngestResponse
// @Failure 400 {object} dto.ErrorResponse "Missing file or unparseable contents"
// @Router /upload/ingest [post]
func (c *IngestController) IngestUpload(ctx *gin.Context) {
	filename, content, ok := uploadedFile(ctx)
	if !ok {
		return
	}

	events, err := c.uploadService.ParseFile(filename, content)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Could not parse file", Details: []string{err.Error()}})
		return
	}

	log.Info().Str("filename", filename).Int("events", len(events)).Msg("IngestUpload: file upload ingestion started")
	resp := c.uploadService.IngestEvents(ctx.Request.Context(), events)
	ctx.JSON(http.StatusOK, resp)
}

// ResetData godoc
// @Summary Reset all ingested data
// @Description Delete every flag, score, attempt, student and test for a fresh import.
// @Tags Data
// @Produce json
// @Success 200 {object} dto.ResetResponse
// @Failure 500 {object} dto.ErrorResponse "Reset failed"
// @Router /data/reset [post]
func (c *IngestController) ResetData(ctx *gin.Context) {
	if err := c.uploadService.Reset(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Reset failed", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, dto.ResetResponse{Status: "ok", Message: "All data cleared successfully"})
}

// uploadedFile pulls the multipart "file" field out of the request, answering
// 400 itself when it is missing or unreadable.
func uploadedFile(ctx *gin.Context) (string, []byte, bool) {
	header, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "No file provided", Details: []string{err.Error()}})
		return "", nil, false
	}

	content, err := readAll(header)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("uploadedFile: failed to read upload")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Could not read uploaded file"})
		return "", nil, false
	}
	return header.Filename, content, true
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
