package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds the application's configuration values.
type Config struct {
	AppName     string `json:"appname"`
	AppEnv      string `json:"appenv"`
	AppPort     uint16 `json:"appport"`
	GinMode     string `json:"ginmode"`
	DBHost      string `json:"dbhost"`
	DBPort      uint16 `json:"dbport"`
	DBName      string `json:"dbname"`
	DBUSER      string `json:"dbuser"`
	DBPass      string `json:"dbpass"`
	LogLevel    string `json:"loglevel"`
	LogFormat   string `json:"logformat"`
	GeoIPDBPath string `json:"geoip_db_path"`
	JWTSecret   string `json:"-"`
}

// ErrMissingJWTSecret is returned by Validate when JWTSECRET is empty outside tests.
var ErrMissingJWTSecret = errors.New("JWTSECRET must be set")

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
// A missing .env file is not fatal; values then come from the process environment.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Error loading .env file: %v", err)
		}

		appPort, _ := strconv.ParseUint(getEnv("APPPORT", "8080"), 10, 16)
		dbPort, _ := strconv.ParseUint(getEnv("DBPORT", "3306"), 10, 16)

		config = &Config{
			AppName:     getEnv("APPNAME", "clinic-therapy"),
			AppEnv:      os.Getenv("APPENV"),
			AppPort:     uint16(appPort),
			GinMode:     getEnv("GINMODE", "debug"),
			DBHost:      os.Getenv("DBHOST"),
			DBPort:      uint16(dbPort),
			DBName:      os.Getenv("DBNAME"),
			DBUSER:      os.Getenv("DBUSER"),
			DBPass:      os.Getenv("DBPASS"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "console"),
			GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),
			JWTSecret:   os.Getenv("JWTSECRET"),
		}
	})
	return config
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// Validate checks the settings the server cannot run without. An empty JWT
// secret is only tolerated when APPENV is "test".
func (c *Config) Validate() error {
	if c.JWTSecret == "" && c.AppEnv != "test" {
		return ErrMissingJWTSecret
	}
	return nil
}

// IsTestEnv reports whether APPENV is "test". It reads the environment directly
// so tests can flip it with t.Setenv after the config singleton was built.
func IsTestEnv() bool {
	return os.Getenv("APPENV") == "test"
}

// DSN builds the MySQL data source name from the configuration values.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local", c.DBUSER, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// ConnectMySQL establishes a connection to a MySQL database using the configuration values.
// When APPENV is "test" a private in-memory SQLite database is opened instead.
func ConnectMySQL() (*gorm.DB, error) {
	cfg := LoadConfig()

	gormCfg := &gorm.Config{}
	if zl := Logger(); zl != nil {
		gormCfg.Logger = NewGormLogger(zl, gormlogger.Warn)
	}

	if IsTestEnv() {
		dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open mysql %s:%d/%s: %w", cfg.DBHost, cfg.DBPort, cfg.DBName, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
