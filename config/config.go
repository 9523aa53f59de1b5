package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	Port          string
	AssetRoot     string
	PublicBaseURL string
	LogMode       string

	// Blob storage: "local" or "s3"
	StorageBackend string
	AWSRegion      string
	AWSBucketName  string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	// Record storage: "file" or "mongo"
	MetadataBackend string
	MongoURI        string
	MongoDatabase   string

	// Remote generator: "fal" or "gemini"
	GeneratorProvider string
	FalKey            string
	FalQueueURL       string
	FalRestURL        string
	FalPollInterval   time.Duration
	GeminiAPIKey      string
	GeminiImageModel  string
	RemoteTimeout     time.Duration
	HTTPTimeout       time.Duration

	BrowserFallback  bool
	ChromeDriverPath string
)

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	Port = getEnv("PORT", "8080")
	AssetRoot = getEnv("ASSET_ROOT", "public")
	PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/")
	LogMode = getEnv("LOG_MODE", "dev")

	StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", "local"))
	AWSRegion = getEnv("AWS_REGION", "us-east-1")
	AWSBucketName = getEnv("AWS_BUCKET_NAME", "")
	S3BaseEndpoint = getEnv("S3_BASE_ENDPOINT", "")
	S3AccessKey = getEnv("S3_ACCESS_KEY", "")
	S3SecretKey = getEnv("S3_SECRET_KEY", "")

	MetadataBackend = strings.ToLower(getEnv("METADATA_BACKEND", "file"))
	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017/")
	MongoDatabase = getEnv("MONGO_DATABASE", "dekor")

	GeneratorProvider = strings.ToLower(getEnv("GENERATOR_PROVIDER", "fal"))
	FalKey = getEnv("FAL_KEY", "")
	FalQueueURL = getEnv("FAL_QUEUE_URL", "https://queue.fal.run")
	FalRestURL = getEnv("FAL_REST_URL", "https://rest.alpha.fal.ai")
	FalPollInterval = time.Duration(getEnvInt("FAL_POLL_INTERVAL_MS", 1500)) * time.Millisecond
	GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	GeminiImageModel = getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image")
	RemoteTimeout = time.Duration(getEnvInt("REMOTE_TIMEOUT_SECONDS", 300)) * time.Second
	HTTPTimeout = time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second

	BrowserFallback = getEnvBool("BROWSER_FALLBACK", false)
	ChromeDriverPath = getEnv("CHROMEDRIVER_PATH", "/usr/local/bin/chromedriver")

	if FalPollInterval <= 0 {
		FalPollInterval = 1500 * time.Millisecond
	}
	if RemoteTimeout <= 0 {
		RemoteTimeout = 5 * time.Minute
	}
	if HTTPTimeout <= 0 {
		HTTPTimeout = 30 * time.Second
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
