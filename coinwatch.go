package main

import (
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/rest"

	"coinwatch-api/internal/cli"
	"coinwatch-api/internal/config"
	"coinwatch-api/internal/handler"
	"coinwatch-api/internal/svc"
)

var configFile = flag.String("f", "etc/coinwatch.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(*cfg)
	defer ctx.Close()
	handler.RegisterHandlers(server, ctx)

	cli.LogConfigSummary(cfg)
	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
