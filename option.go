package secplan

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type Config struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string

	// DueSoonDays 临近截止提前提醒天数（<=0 用默认 3）
	DueSoonDays int

	// DueSoonCronSpec cron 表达式，空串表示不启动扫描
	// 例："0 8 * * *" 每天 08:00
	DueSoonCronSpec string
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithRDB(rdb *redis.Client) Option {
	return func(c *Config) {
		c.RDB = rdb
	}
}

func WithTablePrefix(prefix string) Option {
	return func(c *Config) {
		c.TablePrefix = prefix
	}
}

// WithDueSoonScan 启用临近截止扫描
func WithDueSoonScan(cronSpec string, withinDays int) Option {
	return func(c *Config) {
		c.DueSoonCronSpec = cronSpec
		c.DueSoonDays = withinDays
	}
}
