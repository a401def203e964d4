package main

import (
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	_ "github.com/go-kratos/kratos/v2/encoding/yaml"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/joho/godotenv"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/internal/conf"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/logger"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "trend_radar"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "app/trend_radar/configs/server.yaml", "config path, eg: -conf server.yaml")
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}

func main() {
	flag.Parse()
	// .env 可选，用于本地注入 TRENDRADAR_* 密钥
	_ = godotenv.Load()

	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}
	if bc.Radar == nil {
		panic("config: radar section is required")
	}

	level, logFile := "info", ""
	if bc.Radar.Log != nil {
		level, logFile = bc.Radar.Log.Level, bc.Radar.Log.File
	}
	if err := logger.InitLogger(level, logFile); err != nil {
		panic(err)
	}

	// kratos 日志统一写入 logrus，包含调用者信息、服务ID等上下文
	kl := log.With(logger.NewKratosLogger(logger.Log),
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)
	log.SetLogger(kl)

	app, cleanup, err := wireApp(bc.Server, bc.Radar, kl)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		panic(err)
	}
}
