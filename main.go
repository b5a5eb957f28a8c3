package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/sigbake/internal/config"
	"github.com/cristianadrielbraun/sigbake/internal/handlers"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	comp, err := cfg.NewCompositor()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Rendering.Disabled {
		log.Printf("[bake] rendering disabled, portraits are published unframed")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	h := handlers.New(cfg, comp)
	h.Register(r)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Sessions().Run(ctx, time.Minute)

	log.Printf("sigbake listening on %s", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal(err)
	}
}
