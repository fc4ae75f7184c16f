package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"devlog/config"
	"devlog/markdown"
	"devlog/models"
	"devlog/routes"
	"devlog/search"
	"devlog/ssr"
	"devlog/storage"
	"devlog/utils"
)

func main() {
	createAdmin := flag.String("create-admin", "", "provision an admin account as user:pass and exit")
	flag.Parse()

	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer utils.Logger.Sync()

	db := config.InitDatabase(
		&models.Admin{},
		&models.Category{},
		&models.Post{},
		&models.PostImage{},
		&models.PostVideo{},
		&models.PostThumbnail{},
	)

	if *createAdmin != "" {
		if err := provisionAdmin(*createAdmin); err != nil {
			utils.Sugar.Fatalf("create-admin failed: %v", err)
		}
		utils.Sugar.Info("admin account provisioned")
		return
	}

	rdb := utils.GetRedis()

	index := search.NewRedisIndex(rdb)
	if err := index.EnsureIndex(context.Background()); err != nil {
		utils.Sugar.Fatalf("failed to ensure search index: %v", err)
	}

	pipeline := markdown.NewPipeline(cfg.CDNBaseURL)

	syncer := search.NewSyncer(db, index, pipeline,
		time.Duration(cfg.SearchSyncIntervalSec)*time.Second)
	syncer.Start()
	defer syncer.Stop()

	store, err := storage.NewS3Store(storage.S3Config{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Endpoint:        cfg.AWSEndpoint,
		DisableSSL:      cfg.AWSDisableSSL,
		Bucket:          cfg.S3Bucket,
	})
	if err != nil {
		utils.Sugar.Fatalf("failed to init blob store: %v", err)
	}

	router := routes.SetupRouter(routes.Deps{
		DB:          db,
		Index:       index,
		Syncer:      syncer,
		Pipeline:    pipeline,
		Store:       store,
		Analyzer:    storage.BlurhashAnalyzer{},
		SSRCache:    ssr.NewCache(rdb, time.Duration(cfg.SSRCacheTTLHours)*time.Hour),
		SSRRenderer: ssr.NewHTTPRenderer(cfg.SSRRendererURL),
	})

	addr := ":" + cfg.AppPort
	utils.Sugar.Infof("listening on %s", addr)
	if err := utils.GraceServer(addr, router); err != nil {
		utils.Sugar.Fatalf("server exited: %v", err)
	}
}

// provisionAdmin creates an admin account from a user:pass argument.
func provisionAdmin(arg string) error {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("expected user:pass, got %q", arg)
	}

	hash, err := utils.HashPassword(parts[1])
	if err != nil {
		return err
	}

	admin := models.Admin{Username: parts[0], PasswordHash: hash}
	return config.DB().Create(&admin).Error
}
