package statsapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/gin-gonic/gin"
)

const queryTimeout = 2 * time.Second

var ErrMissingDependency = errors.New("stats controller needs a leaderboard, a result repo and a logger")

// StatsController serves read-only game statistics.
type StatsController struct {
	leaderboard i.Leaderboard
	results     i.ResultRepo
	logger      i.Logger
}

// NewStatsController initializes a StatsController.
func NewStatsController(lb i.Leaderboard, rr i.ResultRepo, l i.Logger) (*StatsController, error) {
	if lb == nil || rr == nil || l == nil {
		return nil, ErrMissingDependency
	}
	return &StatsController{
		leaderboard: lb,
		results:     rr,
		logger:      l,
	}, nil
}

// RegisterPublic registers public routes.
func (sc *StatsController) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/leaderboard/:level", sc.leaderboardTop)
	route.GET("/results", sc.recentResults)
}

// RegisterProtected registers protected routes.
func (sc *StatsController) RegisterProtected(route *gin.RouterGroup) {}

func (sc *StatsController) leaderboardTop(ctx *gin.Context) {
	var uri LevelURI
	if err := ctx.ShouldBindUri(&uri); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var query LimitQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Request.Context(), queryTimeout)
	defer cancel()
	entries, err := sc.leaderboard.Top(timeoutCtx, uri.Level, query.Limit)
	if err != nil {
		sc.logger.Error("reading leaderboard: " + err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading leaderboard"})
		return
	}

	response := &LeaderboardResponse{
		Level:   uri.Level,
		Entries: make([]LeaderboardEntryResponse, len(entries)),
	}
	for n, e := range entries {
		response.Entries[n] = LeaderboardEntryResponse{
			Rank:      n + 1,
			SessionID: e.SessionID,
			Elapsed:   e.Elapsed,
		}
	}
	ctx.JSON(http.StatusOK, response)
}

func (sc *StatsController) recentResults(ctx *gin.Context) {
	var query LimitQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Request.Context(), queryTimeout)
	defer cancel()
	results, err := sc.results.Recent(timeoutCtx, query.Limit)
	if err != nil {
		sc.logger.Error("reading results: " + err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading results"})
		return
	}

	response := make([]ResultResponse, len(results))
	for n, r := range results {
		response[n] = toResultResponse(r)
	}
	ctx.JSON(http.StatusOK, response)
}
