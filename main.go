package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"financeiro/admin"
	"financeiro/config"
	"financeiro/currency"
	"financeiro/database"
	"financeiro/middleware"
	"financeiro/router"
	"financeiro/service"
	"financeiro/store"

	"github.com/joho/godotenv"
)

// @title Financeiro API
// @version 1.0
// @description 个人财务管理 API：消费记录、财务档案、应急金、仪表盘、数据导出和后台用户管理
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const version = "1.0.0"

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Printf("financeiro v%s", version)
		return
	}

	// .env 只用于本地开发，不存在时忽略
	if err := godotenv.Load(); err == nil {
		log.Println("已加载 .env")
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖 + 环境变量）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		// 自动添加冒号前缀
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}

	// 打印配置信息
	config.PrintConfig()

	// 初始化存储
	kv, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("存储初始化失败: %v", err)
	}
	defer kv.Close()

	stores := store.New(kv)

	auth, err := service.NewAuthService(stores, &cfg.Admin)
	if err != nil {
		log.Fatalf("认证服务初始化失败: %v", err)
	}

	sheets, err := service.NewSheetsSyncer(context.Background(), &cfg.Sheets)
	if err != nil {
		log.Printf("警告: 表格同步初始化失败，已禁用: %v", err)
	}

	mailer := service.NewEmailService(&cfg.Email)

	// 初始化 JWT
	middleware.InitJWT(cfg)

	// 设置路由
	r := router.SetupRouter(router.Deps{
		Config:     cfg,
		Stores:     stores,
		Auth:       auth,
		Reconciler: admin.NewReconciler(stores, mailer),
		Sheets:     sheets,
		Codec:      currency.New(cfg.Currency.Locale, cfg.Currency.Symbol),
	})

	// 启动服务器
	log.Printf("==========================================")
	log.Printf("  financeiro v%s 已启动", version)
	log.Printf("==========================================")
	log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
	log.Printf("  API接口:  http://localhost%s/api/v1/", cfg.Server.Port)
	log.Printf("  后台接口: http://localhost%s/admin/", cfg.Server.Port)
	log.Printf("==========================================")

	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}
