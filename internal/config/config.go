package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all environment-driven settings for the server.
type Config struct {
	Port              string
	MongoURI          string
	DBName            string
	JWTSecret         string
	TokenExpiry       int // hours
	FrontendOrigin    string
	GoogleClientID    string
	GoogleSecret      string
	VideoAppID        string
	VideoServerSecret string
	MatchServiceURL   string
}

// LoadConfig reads configuration from the .env file and the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment variables")
	}

	expiry, err := strconv.Atoi(getEnv("TOKEN_EXPIRY_HOURS", "72"))
	if err != nil {
		expiry = 72
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:            getEnv("DB_NAME", "studybuddy"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenExpiry:       expiry,
		FrontendOrigin:    getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:      getEnv("GOOGLE_CLIENT_SECRET", ""),
		VideoAppID:        getEnv("VIDEO_APP_ID", ""),
		VideoServerSecret: getEnv("VIDEO_SERVER_SECRET", ""),
		MatchServiceURL:   getEnv("MATCH_SERVICE_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
