package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coopgaem/server/broadcast"
	"github.com/coopgaem/server/config"
	"github.com/coopgaem/server/level"
	"github.com/coopgaem/server/logger"
	"github.com/coopgaem/server/monitor"
	"github.com/coopgaem/server/persistence"
	"github.com/coopgaem/server/room"
	"github.com/coopgaem/server/rpc"
	"github.com/coopgaem/server/server"
	"github.com/coopgaem/server/services"
	"github.com/coopgaem/server/session"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.Log.File)
	defer logger.Sync()

	if err := level.Load(); err != nil {
		logger.Log.Fatalf("invalid level catalog: %v", err)
	}
	logger.Log.Infof("loaded %d levels", level.Count())

	var store persistence.RecordStore
	if cfg.Database.Enabled {
		pg := cfg.Database.Postgres
		switch cfg.Database.Driver {
		case "pq":
			store, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		default:
			store, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		}
		if err != nil {
			logger.Log.Fatalf("failed to connect to database: %v", err)
		}
		defer store.Close()
	}

	mon := monitor.NewMonitor("coopgame")
	mon.StartServer(cfg.Server.MetricsAddress)

	sessionManager := session.NewManager()
	roomManager := room.NewManager(cfg.Game.TickRate)
	roomManager.SetCompletionSink(services.NewCompletionService(store))
	roomManager.SetMetrics(mon)

	broadcaster := broadcast.NewRoomBroadcaster(roomManager, sessionManager)
	roomManager.SetBroadcaster(broadcaster)

	rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("failed to start RPC server: %v", err)
	}
	if err := rpcServer.Register(rpc.NewAdminService(roomManager)); err != nil {
		logger.Log.Fatalf("failed to register RPC service: %v", err)
	}
	go rpcServer.Start()

	go roomManager.Run()

	idleWindow := time.Duration(cfg.Game.SessionIdleSeconds) * time.Second
	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, roomManager, sessionManager, broadcaster, mon, idleWindow)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info("shutting down")
		gameServer.Shutdown()
		roomManager.Stop()
		rpcServer.Stop()
		logger.Sync()
		os.Exit(0)
	}()

	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("server error: %v", err)
	}
}
