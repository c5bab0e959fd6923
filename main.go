package main

import (
	"time"

	"go.uber.org/zap"

	"tagserver/auth"
	"tagserver/comm"
	"tagserver/database"
	"tagserver/game"
	"tagserver/gamemodes"
	"tagserver/handlers"
	"tagserver/models"
	"tagserver/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func main() {
	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool, 2)
	go func() {
		var err error
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("Failed to initialize PostgreSQL", zap.Error(err))
		}
		done <- true
	}()
	go func() {
		var err error
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()
	<-done
	<-done

	if err := db.AutoMigrate(&models.User{}); err != nil {
		logger.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	directory := auth.NewUserDirectory(db, rdb, config, logger)
	games := game.NewManager(gamemodes.Available, logger)

	grace := comm.DefaultGraceWindow
	if config.GraceSeconds > 0 {
		grace = time.Duration(config.GraceSeconds) * time.Second
	}
	clients := comm.NewClientManager(games, directory, grace, logger)

	go utils.CronCleaner(clients, logger)

	router := gin.Default()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "x-access-token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := handlers.RequireAuth(directory, logger)

	router.POST("/user", func(c *gin.Context) {
		handlers.RegisterUser(c, directory, logger)
	})
	router.POST("/auth", func(c *gin.Context) {
		handlers.Login(c, directory, logger)
	})
	router.GET("/user", requireAuth, func(c *gin.Context) {
		handlers.UserInfo(c)
	})
	router.DELETE("/user", requireAuth, func(c *gin.Context) {
		handlers.DeleteUser(c, directory, logger)
	})

	router.GET("/gamemodes", func(c *gin.Context) {
		handlers.ListGamemodes(c, games)
	})
	router.GET("/games", func(c *gin.Context) {
		handlers.ListGames(c, games)
	})
	router.POST("/game", requireAuth, func(c *gin.Context) {
		handlers.CreateGame(c, games, logger)
	})
	router.GET("/game/:gid", requireAuth, func(c *gin.Context) {
		handlers.GameInfo(c, games)
	})
	router.PUT("/game/:gid", requireAuth, func(c *gin.Context) {
		handlers.StartGame(c, games, logger)
	})
	router.DELETE("/game/:gid", requireAuth, func(c *gin.Context) {
		handlers.DeleteGame(c, games, logger)
	})

	router.POST("/game/:gid/team", requireAuth, func(c *gin.Context) {
		handlers.CreateTeam(c, games, logger)
	})
	router.GET("/game/:gid/team/:tid", requireAuth, func(c *gin.Context) {
		handlers.TeamInfo(c, games)
	})
	router.PUT("/game/:gid/team/:tid", requireAuth, func(c *gin.Context) {
		handlers.MovePlayer(c, games, logger)
	})
	router.DELETE("/game/:gid/team/:tid", requireAuth, func(c *gin.Context) {
		handlers.DeleteTeam(c, games, logger)
	})

	socket := func(c *gin.Context) {
		handlers.HandleSocket(c, clients, logger)
	}
	router.GET("/ws", socket)
	// Spectator-only clients use the same protocol, just a different entry.
	router.GET("/spectate", socket)

	addr := config.ListenAddr
	if addr == "" {
		addr = ":8081"
	}
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
