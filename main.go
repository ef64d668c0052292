package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-mines/api"
	gameapi "github.com/beka-birhanu/vinom-mines/api/game"
	api_i "github.com/beka-birhanu/vinom-mines/api/i"
	"github.com/beka-birhanu/vinom-mines/api/identity"
	statsapi "github.com/beka-birhanu/vinom-mines/api/stats"
	"github.com/beka-birhanu/vinom-mines/config"
	"github.com/beka-birhanu/vinom-mines/infrastruture/leaderboard"
	logger "github.com/beka-birhanu/vinom-mines/infrastruture/log"
	"github.com/beka-birhanu/vinom-mines/infrastruture/repo"
	"github.com/beka-birhanu/vinom-mines/infrastruture/token"
	"github.com/beka-birhanu/vinom-mines/service"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Global variables for dependencies
var (
	mongoClient        *mongo.Client
	redisClient        *redis.Client
	resultRepo         i.ResultRepo
	scoreBoard         i.Leaderboard
	gameSessionManager *service.GameSessionManager
	jwtTokenizer       i.Tokenizer
	gameController     api_i.Controller
	statsController    api_i.Controller
	router             *api.Router
	appLogger          *logger.Logger
)

func newLogger(prefix, color string) *logger.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initResultRepo(client *mongo.Client) {
	resultRepo = repo.NewResultRepo(client, config.Envs.DBName, "results")
	appLogger.Info("Result repository initialized")
}

func initLeaderboard(client *redis.Client) {
	scoreBoard = leaderboard.NewRedisLeaderboard(client, config.Envs.LeaderboardPrefix, int64(config.Envs.LeaderboardSize))
	appLogger.Info("Leaderboard initialized")
}

func initSessionManager() {
	var err error
	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		Results:     resultRepo,
		Leaderboard: scoreBoard,
		Logger:      newLogger("SESSION-MANAGER", logger.ColorCyan),
		EndDelay:    time.Duration(config.Envs.EndDelayMS) * time.Millisecond,
		SessionTTL:  time.Duration(config.Envs.SessionTTLMinutes) * time.Minute,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initControllers() {
	var err error
	gameController, err = gameapi.NewGameController(gameapi.Config{
		GameSessionManager: gameSessionManager,
		Tokenizer:          jwtTokenizer,
		Logger:             newLogger("GAME-API", logger.ColorPurple),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game controller: %v", err))
		os.Exit(1)
	}

	statsController, err = statsapi.NewStatsController(scoreBoard, resultRepo, newLogger("STATS-API", logger.ColorBlue))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating stats controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Controllers initialized")
}

func initRouter(t i.Tokenizer) {
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Mode:                    config.Envs.GinMode,
		Controllers:             []api_i.Controller{gameController, statsController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func main() {
	appLogger, _ = logger.New("APP", logger.ColorGreen, os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	initMongo(ctx)
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	initRedis(ctx)
	defer redisClient.Close()

	initResultRepo(mongoClient)
	initLeaderboard(redisClient)
	initSessionManager()
	initJWTTokenizer()
	initControllers()
	initRouter(jwtTokenizer)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info(fmt.Sprintf("Serving on %s:%d", config.Envs.HostIP, config.Envs.RESTPort))
	if err := router.Run(runCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
	}

	appLogger.Info("Stopping game sessions")
	gameSessionManager.StopAll()
}
