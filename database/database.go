package database

import (
	"fmt"
	"log"

	"financeiro/config"
	"financeiro/models"
	"financeiro/storage"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 根据 database.driver 打开键值存储
func Open(cfg *config.Config) (storage.KV, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := openMySQL(cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewGormKV(db), nil
	case "sqlite":
		kv, err := storage.NewSQLiteKV(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Printf("sqlite 存储已打开: %s", cfg.Database.SQLitePath)
		return kv, nil
	case "memory", "":
		log.Println("警告: 使用内存存储，进程退出后数据丢失")
		return storage.NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownDriver, cfg.Database.Driver)
	}
}

// openMySQL 初始化 MySQL 连接并迁移键值表
func openMySQL(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	logMode := logger.Warn
	if cfg.Server.Mode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		return nil, fmt.Errorf("迁移键值表失败: %w", err)
	}

	log.Println("数据库初始化成功")
	return db, nil
}
