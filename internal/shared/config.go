package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv          string
	LogLevel        string
	HTTPAddr        string
	MetricsAddr     string
	StoreBackend    string
	MongoURI        string
	MongoDB         string
	MySQLDSN        string
	SQLitePath      string
	ConnectTimeout  time.Duration
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	CacheTTL        time.Duration
	ReviewsFile     string
	DealershipsFile string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}
	return fromEnv()
}

func fromEnv() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		LogLevel:        env("LOG_LEVEL", "info"),
		HTTPAddr:        env("HTTP_ADDR", ":3030"),
		MetricsAddr:     env("METRICS_ADDR", ""),
		StoreBackend:    env("STORE_BACKEND", "mongo"),
		MongoURI:        env("MONGO_URI", "mongodb://mongo_db:27017/"),
		MongoDB:         env("MONGO_DB", "dealershipsDB"),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/dealerships?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		SQLitePath:      env("SQLITE_PATH", "./data/dealerships.db"),
		ConnectTimeout:  time.Duration(atoi("STORE_CONNECT_TIMEOUT_SECONDS", 30)) * time.Second,
		RedisAddr:       env("REDIS_ADDR", ""),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		ReviewsFile:     env("REVIEWS_FILE", "./data/reviews.json"),
		DealershipsFile: env("DEALERSHIPS_FILE", "./data/dealerships.json"),
	}
	if c.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR is empty; query cache disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
