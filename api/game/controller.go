package gameapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/beka-birhanu/vinom-mines/api/identity"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	idParam          = "ID"
	commandTimeout   = 2 * time.Second
	defaultTokenTTL  = 24 * time.Hour
	socketBufferSize = 1024
)

var ErrMissingDependency = errors.New("game controller needs a session manager, a tokenizer and a logger")

// GameController serves the minesweeper sessions of the manager.
type GameController struct {
	gameSessionManager i.GameSessionManager
	tokenizer          i.Tokenizer
	logger             i.Logger
	tokenTTL           time.Duration
	upgrader           websocket.Upgrader
}

// Config holds the dependencies of a GameController.
type Config struct {
	GameSessionManager i.GameSessionManager
	Tokenizer          i.Tokenizer
	Logger             i.Logger
	TokenTTL           time.Duration // TokenTTL is how long a game token stays valid, a day by default.
}

// NewGameController initializes a GameController.
func NewGameController(c Config) (*GameController, error) {
	if c.GameSessionManager == nil || c.Tokenizer == nil || c.Logger == nil {
		return nil, ErrMissingDependency
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = defaultTokenTTL
	}

	return &GameController{
		gameSessionManager: c.GameSessionManager,
		tokenizer:          c.Tokenizer,
		logger:             c.Logger,
		tokenTTL:           c.TokenTTL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  socketBufferSize,
			WriteBufferSize: socketBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}, nil
}

// RegisterPublic registers public routes.
func (gc *GameController) RegisterPublic(route *gin.RouterGroup) {
	route.POST("/games", gc.newGame)
}

// RegisterProtected registers routes that need a token for the game.
func (gc *GameController) RegisterProtected(route *gin.RouterGroup) {
	games := route.Group("/games/:"+idParam, identity.GameOwner(idParam))
	{
		games.GET("", gc.snapshot)
		games.DELETE("", gc.close)
		games.POST("/reveal", gc.reveal)
		games.POST("/flag", gc.flag)
		games.POST("/reset", gc.reset)
		games.POST("/advance", gc.advance)
		games.PUT("/params", gc.configure)
		games.GET("/ws", gc.stream)
	}
}

// newGame starts a session and hands out a token bound to it.
func (gc *GameController) newGame(ctx *gin.Context) {
	var request NewGameRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Request.Context(), commandTimeout)
	defer cancel()
	id, snap, err := gc.gameSessionManager.NewSession(timeoutCtx, request.Level, request.Rows, request.Cols)
	if err != nil {
		gc.fail(ctx, err)
		return
	}

	token, err := gc.tokenizer.Generate(map[string]interface{}{i.ClaimGameID: id.String()}, gc.tokenTTL)
	if err != nil {
		gc.logger.Error("signing game token: " + err.Error())
		_ = gc.gameSessionManager.Close(id)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while creating game"})
		return
	}

	ctx.JSON(http.StatusCreated, &NewGameResponse{
		ID:    id,
		Token: token,
		Game:  toGameResponse(snap),
	})
}

func (gc *GameController) snapshot(ctx *gin.Context) {
	gc.run(ctx, func(c context.Context, id uuid.UUID) (game.Snapshot, error) {
		return gc.gameSessionManager.Snapshot(c, id)
	})
}

func (gc *GameController) reveal(ctx *gin.Context) {
	var request CellRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gc.run(ctx, func(c context.Context, id uuid.UUID) (game.Snapshot, error) {
		return gc.gameSessionManager.Reveal(c, id, *request.Index)
	})
}

func (gc *GameController) flag(ctx *gin.Context) {
	var request CellRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gc.run(ctx, func(c context.Context, id uuid.UUID) (game.Snapshot, error) {
		return gc.gameSessionManager.ToggleFlag(c, id, *request.Index)
	})
}

func (gc *GameController) reset(ctx *gin.Context) {
	gc.run(ctx, func(c context.Context, id uuid.UUID) (game.Snapshot, error) {
		return gc.gameSessionManager.Reset(c, id)
	})
}

func (gc *GameController) configure(ctx *gin.Context) {
	var request ConfigureRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gc.run(ctx, func(c context.Context, id uuid.UUID) (game.Snapshot, error) {
		return gc.gameSessionManager.Configure(c, id, request.Level, request.Rows, request.Cols)
	})
}

func (gc *GameController) advance(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Request.Context(), commandTimeout)
	defer cancel()
	snap, complete, err := gc.gameSessionManager.Advance(timeoutCtx, id)
	if err != nil {
		gc.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, &AdvanceResponse{
		CampaignComplete: complete,
		Game:             toGameResponse(snap),
	})
}

func (gc *GameController) close(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}
	if err := gc.gameSessionManager.Close(id); err != nil {
		gc.fail(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// run executes a session command and answers with the resulting board.
func (gc *GameController) run(ctx *gin.Context, cmd func(context.Context, uuid.UUID) (game.Snapshot, error)) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Request.Context(), commandTimeout)
	defer cancel()
	snap, err := cmd(timeoutCtx, id)
	if err != nil {
		gc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toGameResponse(snap))
}

func sessionID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(idParam))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return uuid.Nil, false
	}
	return id, true
}

// fail maps a session error to its HTTP status.
func (gc *GameController) fail(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, game.ErrSessionStopped):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrInvalidIndex),
		errors.Is(err, game.ErrInvalidParams),
		errors.Is(err, service.ErrInvalidLevel),
		errors.Is(err, service.ErrInvalidDimensions):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrGameNotWon):
		status = http.StatusConflict
	case errors.Is(err, service.ErrManagerStopped):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		gc.logger.Error("game request failed: " + err.Error())
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
