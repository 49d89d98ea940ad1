package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // 数据库迁移模式: "auto"(默认), "alter"(修改), "drop"(删除重建)

	// Server
	ServerPort string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MQTT 通知代理
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTUsername  string
	MQTTPassword  string

	// 卫星洪水数据源
	FloodAPIURL string
	FloodAPIKey string

	// 调度参数
	AcceptanceWindowSeconds int // 接受窗口时长（秒）
	SchedulerPollSeconds    int // 延迟队列轮询间隔（秒）
	EscalationThreshold     int // 连续超时多少次后升级优先级

	// 默认调度中心坐标（候选者没有坐标时回退使用）
	DefaultLatitude  float64
	DefaultLongitude float64

	// JWT Authentication
	JWTSecretKey string

	// Admin
	DefaultAdminPassword string
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	// Get environment type (default to LOCAL if not set)
	envType := getEnv("ENV_TYPE", "LOCAL")
	prefix := ""

	// Set prefix based on environment type
	if strings.ToUpper(envType) == "LOCAL" {
		prefix = "LOCAL_"
	} else if strings.ToUpper(envType) == "SERVER" {
		prefix = "SERVER_"
	} else {
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	fmt.Printf("Loading configuration for environment: %s\n", envType)

	return &Config{
		// Environment type
		EnvType: envType,

		// Database config - use environment-specific variables if available
		DBHost:          getEnv(prefix+"DB_HOST", getEnv("DB_HOST", "localhost")),
		DBUser:          getEnv(prefix+"DB_USER", getEnv("DB_USER", "root")),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", getEnv("DB_PASSWORD", "resq123")),
		DBName:          getEnv(prefix+"DB_NAME", getEnv("DB_NAME", "resq_db")),
		DBPort:          getEnv(prefix+"DB_PORT", getEnv("DB_PORT", "3306")),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", getEnv("DB_MIGRATION_MODE", "alter")),

		// Server config
		ServerPort: getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),

		// Redis config
		RedisHost:     getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "localhost")),
		RedisPort:     getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// MQTT config
		MQTTBrokerURL: getEnv(prefix+"MQTT_BROKER_URL", getEnv("MQTT_BROKER_URL", "tcp://localhost:1883")),
		MQTTClientID:  getEnv("MQTT_CLIENT_ID", "resq-http-service"),
		MQTTUsername:  getEnv("MQTT_USERNAME", ""),
		MQTTPassword:  getEnv("MQTT_PASSWORD", ""),

		// 卫星洪水数据源
		FloodAPIURL: getEnv("FLOOD_API_URL", ""),
		FloodAPIKey: getEnv("FLOOD_API_KEY", ""),

		// 调度参数
		AcceptanceWindowSeconds: getEnvAsInt("ACCEPTANCE_WINDOW_SECONDS", 300),
		SchedulerPollSeconds:    getEnvAsInt("SCHEDULER_POLL_SECONDS", 1),
		EscalationThreshold:     getEnvAsInt("ESCALATION_THRESHOLD", 3),

		// 默认调度中心坐标（孟买）
		DefaultLatitude:  getEnvAsFloat("DEFAULT_LATITUDE", 19.0760),
		DefaultLongitude: getEnvAsFloat("DEFAULT_LONGITUDE", 72.8750),

		// JWT Config
		JWTSecretKey: getEnv("JWT_SECRET_KEY", "resq-secret-key-change-in-production"),

		// Admin Config
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
	}
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true&multiStatements=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// AcceptanceWindow 返回接受窗口时长
func (c *Config) AcceptanceWindow() time.Duration {
	return time.Duration(c.AcceptanceWindowSeconds) * time.Second
}

// SchedulerPollInterval 返回延迟队列轮询间隔
func (c *Config) SchedulerPollInterval() time.Duration {
	return time.Duration(c.SchedulerPollSeconds) * time.Second
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as float with default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
