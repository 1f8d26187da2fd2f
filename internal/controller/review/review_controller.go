package review

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ptdat2/Magpie/internal/dto"
	"github.com/ptdat2/Magpie/internal/model"
	"github.com/ptdat2/Magpie/internal/service"
	"github.com/rs/zerolog/log"
)

// ReviewController exposes the read-and-moderation side of the corpus:
// attempt listing and detail, rescoring, flagging, duplicate threads,
// leaderboards and stats.
type ReviewController struct {
	attemptService     service.AttemptService
	leaderboardService service.LeaderboardService
}

func NewReviewController(attemptService service.AttemptService, leaderboardService service.LeaderboardService) *ReviewController {
	return &ReviewController{
		attemptService:     attemptService,
		leaderboardService: leaderboardService,
	}
}

// ListAttempts godoc
// @Summary List attempts
// @Description List ingested attempts with filtering by test, student, status, duplicate linkage, date range and free-text student search.
// @Tags Attempts
// @Produce json
// @Param test_id query int false "Filter by test ID"
// @Param student_id query int false "Filter by student ID"
// @Param status query string false "Filter by status (SCORED, DEDUPED, FLAGGED)"
// @Param has_duplicates query bool false "true: only duplicates, false: only canonicals"
// @Param date_from query string false "Only attempts started at or after this time"
// @Param date_to query string false "Only attempts started at or before this time"
// @Param search query string false "Case-insensitive match on student name, email or phone"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.AttemptListResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts [get]
func (c *ReviewController) ListAttempts(ctx *gin.Context) {
	var query dto.ListAttemptsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		log.Warn().Err(err).Msg("ListAttempts: failed to bind query")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid query parameters", Details: []string{err.Error()}})
		return
	}

	resp, err := c.attemptService.List(ctx.Request.Context(), query)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list attempts"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAttempt godoc
// @Summary Get one attempt
// @Description Retrieve a single attempt with its student, test, score and flags.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid attempt ID"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id} [get]
func (c *ReviewController) GetAttempt(ctx *gin.Context) {
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	resp, err := c.attemptService.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Attempt not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load attempt"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// RecomputeAttempt godoc
// @Summary Recompute an attempt's score
// @Description Rescore the attempt against the test's current marking scheme and replace the stored score. Duplicates cannot be recomputed.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.ScoreResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid attempt ID"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt is a duplicate"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id}/recompute [post]
func (c *ReviewController) RecomputeAttempt(ctx *gin.Context) {
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	score, err := c.attemptService.Recompute(ctx.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Attempt not found"})
		case errors.Is(err, model.ErrInvalidState):
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Duplicate attempts have no score to recompute", Details: []string{err.Error()}})
		default:
			log.Error().Err(err).Uint("attemptID", id).Msg("RecomputeAttempt: service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to recompute score"})
		}
		return
	}
	ctx.JSON(http.StatusOK, score)
}

// FlagAttempt godoc
// @Summary Flag an attempt for review
// @Description Append a review flag to the attempt. The first flag moves it to FLAGGED; further flags accumulate.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param flag body dto.FlagRequest true "Flag reason and optional reviewer"
// @Success 201 {object} dto.FlagResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt not yet classified"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id}/flag [post]
func (c *ReviewController) FlagAttempt(ctx *gin.Context) {
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	var req dto.FlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("FlagAttempt: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	flag, err := c.attemptService.Flag(ctx.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Attempt not found"})
		case errors.Is(err, model.ErrInvalidState):
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Attempt cannot be flagged before it is classified", Details: []string{err.Error()}})
		default:
			log.Error().Err(err).Uint("attemptID", id).Msg("FlagAttempt: service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to flag attempt"})
		}
		return
	}
	ctx.JSON(http.StatusCreated, flag)
}

// GetDuplicateThread godoc
// @Summary Get an attempt's duplicate thread
// @Description Resolve the canonical attempt for the given attempt and return it together with every duplicate folded into it.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.DuplicateThreadResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid attempt ID"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id}/duplicates [get]
func (c *ReviewController) GetDuplicateThread(ctx *gin.Context) {
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	thread, err := c.attemptService.DuplicateThread(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Attempt not found"})
			return
		}
		log.Error().Err(err).Uint("attemptID", id).Msg("GetDuplicateThread: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load duplicate thread"})
		return
	}
	ctx.JSON(http.StatusOK, thread)
}

// GetLeaderboard godoc
// @Summary Test leaderboard
// @Description Rank students by their best scored attempt on the given test. Duplicates never rank; flagged attempts still do.
// @Tags Leaderboard
// @Produce json
// @Param test_id query int true "Test ID"
// @Success 200 {object} dto.LeaderboardResponse
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid test_id"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /leaderboard [get]
func (c *ReviewController) GetLeaderboard(ctx *gin.Context) {
	raw := ctx.Query("test_id")
	if raw == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "test_id query parameter is required"})
		return
	}
	testID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid test_id format"})
		return
	}

	board, err := c.leaderboardService.GetLeaderboard(ctx.Request.Context(), uint(testID))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Test not found"})
			return
		}
		log.Error().Err(err).Uint64("testID", testID).Msg("GetLeaderboard: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to build leaderboard"})
		return
	}
	ctx.JSON(http.StatusOK, board)
}

// ListTests godoc
// @Summary List tests
// @Description List every test seen during ingestion, ordered by name.
// @Tags Tests
// @Produce json
// @Success 200 {array} dto.TestResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tests [get]
func (c *ReviewController) ListTests(ctx *gin.Context) {
	tests, err := c.leaderboardService.ListTests(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("ListTests: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list tests"})
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetStats godoc
// @Summary Corpus statistics
// @Description Totals per entity, attempt counts by status and the overall duplicate rate.
// @Tags Stats
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /stats [get]
func (c *ReviewController) GetStats(ctx *gin.Context) {
	stats, err := c.attemptService.Stats(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("GetStats: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to compute stats"})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// attemptID parses the :attempt_id path parameter, answering 400 itself when
// the value is not a positive integer.
func attemptID(ctx *gin.Context) (uint, bool) {
	raw := ctx.Param("attempt_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid attempt ID format"})
		return 0, false
	}
	return uint(id), true
}
