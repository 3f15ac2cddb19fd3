package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reddit-harvest/internal/harvest/api"
	"reddit-harvest/internal/harvest/client"
	"reddit-harvest/internal/harvest/collector"
	"reddit-harvest/internal/harvest/export"
	"reddit-harvest/internal/harvest/store"
	"reddit-harvest/internal/middleware/logger"
	"reddit-harvest/pkg/config"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "配置文件路径")
		mode       = flag.String("mode", "full", "采集模式：full | keyword")
		exportDir  = flag.String("export", "", "采集后把数据导出到该目录")
		report     = flag.Bool("report", false, "只生成分析报告并打印，不采集")
		serve      = flag.String("serve", "", "启动只读查询服务的监听地址（如 :8080）")
		schedule   = flag.String("schedule", "", "cron 表达式，按计划重复采集")
	)
	flag.Parse()

	// .env 允许缺失，凭据也可以直接来自环境
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	log.Info("Starting Reddit Harvest Service...")

	db, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if *report {
		exp := export.New(log, db)
		text, err := exp.BuildReport()
		if err != nil {
			log.Fatal("Failed to build report", zap.Error(err))
		}
		fmt.Println(text)
		return
	}

	if *serve != "" {
		srv := &api.Server{DB: db, Log: log}
		r := srv.Router()
		_ = r.SetTrustedProxies(nil)
		log.Info("Query service is running", zap.String("address", *serve))
		if err := r.Run(*serve); err != nil {
			log.Fatal("Query service stopped", zap.Error(err))
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	run := func() {
		source, err := client.New(log, cfg.Reddit)
		if err != nil {
			log.Error("Failed to create reddit client", zap.Error(err))
			return
		}
		coll, err := collector.New(log, cfg, source, db)
		if err != nil {
			log.Error("Failed to create collector", zap.Error(err))
			return
		}

		switch *mode {
		case "full":
			coll.Run(ctx)
		case "keyword":
			coll.RunKeywordOnly(ctx, true)
		default:
			log.Error("Unknown mode", zap.String("mode", *mode))
			return
		}

		if *exportDir != "" && ctx.Err() == nil {
			if err := export.New(log, db).All(*exportDir); err != nil {
				log.Error("Export failed", zap.Error(err))
			}
		}
	}

	if *schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(*schedule, run); err != nil {
			log.Fatal("Invalid cron expression", zap.String("schedule", *schedule), zap.Error(err))
		}
		log.Info("Scheduled collection enabled", zap.String("schedule", *schedule))
		c.Start()
		<-ctx.Done()
		c.Stop()
		log.Info("Shutting down")
		return
	}

	run()
}
