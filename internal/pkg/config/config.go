// internal/pkg/config/config.go
package config

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config 汇集所有服务共享的基础设施与业务配置。
// 读取顺序: 默认值 -> YAML 文件 (CONFIG_FILE) -> 环境变量覆盖。
type Config struct {
	Infra struct {
		MysqlDSN   string `yaml:"mysql_dsn"`
		RedisAddr  string `yaml:"redis_addr"`
		KafkaAddrs string `yaml:"kafka_addrs"`
		Jaeger     struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Nacos struct {
			ServerAddrs string `yaml:"server_addrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`

	App struct {
		LogLevel          string `yaml:"log_level"`
		NotificationTopic string `yaml:"notification_topic"`
		AdminUserID       int64  `yaml:"admin_user_id"`
		Cart              struct {
			// AdmissionRule 是一条 CEL 表达式，约束每次加购后的行状态。
			// 可用变量: product_id, quantity, unit_price_cents。
			AdmissionRule string `yaml:"admission_rule"`
		} `yaml:"cart"`
	} `yaml:"app"`
}

var (
	current Config
	once    sync.Once
)

func defaults() Config {
	var c Config
	c.Infra.MysqlDSN = "root:root@tcp(localhost:3306)/storefront?charset=utf8mb4&parseTime=True&loc=Local"
	c.Infra.RedisAddr = "localhost:6379"
	c.Infra.KafkaAddrs = "localhost:9092"
	c.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	c.Infra.Nacos.ServerAddrs = "localhost:8848"
	c.Infra.Nacos.Group = "DEFAULT_GROUP"
	c.App.LogLevel = "info"
	c.App.NotificationTopic = "notifications"
	c.App.AdminUserID = 1
	c.App.Cart.AdmissionRule = "quantity <= 99 && unit_price_cents <= 100000000"
	return c
}

// Load 解析配置。只执行一次，之后通过 GetCurrent 读取。
func Load() (Config, error) {
	var loadErr error
	once.Do(func() {
		c := defaults()
		if path := os.Getenv("CONFIG_FILE"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				loadErr = err
				return
			}
			if err := yaml.Unmarshal(data, &c); err != nil {
				loadErr = err
				return
			}
		}
		c.Infra.MysqlDSN = getEnv("MYSQL_DSN", c.Infra.MysqlDSN)
		c.Infra.RedisAddr = getEnv("REDIS_ADDR", c.Infra.RedisAddr)
		c.Infra.KafkaAddrs = getEnv("KAFKA_ADDRS", c.Infra.KafkaAddrs)
		c.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", c.Infra.Jaeger.Endpoint)
		c.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", c.Infra.Nacos.ServerAddrs)
		c.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", c.Infra.Nacos.Namespace)
		c.Infra.Nacos.Group = getEnv("NACOS_GROUP", c.Infra.Nacos.Group)
		c.App.LogLevel = getEnv("LOG_LEVEL", c.App.LogLevel)
		current = c
	})
	return current, loadErr
}

// GetCurrent 返回已加载的配置。必须先调用 Load。
func GetCurrent() Config {
	return current
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
