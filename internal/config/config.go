package config

import (
	"errors"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppEnv     string   `env:"APP_ENV" envDefault:"development"`
	HTTPPort   string   `env:"HTTP_PORT" envDefault:"3000"`
	ClientURLs []string `env:"CLIENT_URL" envSeparator:"," envDefault:"http://localhost:5173"`

	DBType     string `env:"DBType" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DBUser" envDefault:""`
	DBPassword string `env:"DBPassword" envDefault:""`
	DBAddr     string `env:"DBAddr" envDefault:""`
	DBName     string `env:"DBName" envDefault:"resonansi"`
	DBPath     string `env:"DBPath" envDefault:"datas/resonansi.db"`
	DBPort     string `env:"DBPort" envDefault:"3306"`

	// 令牌与 Cookie
	JWTSecret            string `env:"JWT_SECRET,notEmpty"`
	JWTIssuer            string `env:"JWT_ISSUER" envDefault:"resonansi"`
	JWTExpirationMinutes int    `env:"JWT_EXPIRATION_MINUTES" envDefault:"1440"`
	CookieSameSite       string `env:"COOKIE_SAMESITE" envDefault:"strict"`

	// 服务端会话，空值表示纯无状态令牌
	SessionStore           string `env:"SESSION_STORE" envDefault:""`
	RedisURL               string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SessionCleanupSchedule string `env:"SESSION_CLEANUP_SCHEDULE" envDefault:"@every 1h"`

	GoogleClientID               string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret           string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL            string `env:"GOOGLE_REDIRECT_URL"`
	GoogleIssuerURL              string `env:"GOOGLE_ISSUER_URL" envDefault:"https://accounts.google.com"`
	GoogleAllowUnverifiedProfile bool   `env:"GOOGLE_ALLOW_UNVERIFIED_PROFILE" envDefault:"false"`
	OAuthSuccessRedirect         string `env:"OAUTH_SUCCESS_REDIRECT" envDefault:"https://jurnalresonansi.com/"`

	StorageType           string `env:"STORAGE_TYPE" envDefault:"local"`
	StorageLocalDir       string `env:"STORAGE_LOCAL_DIR" envDefault:"uploads"`
	StoragePublicBaseURL  string `env:"STORAGE_PUBLIC_BASE_URL" envDefault:""`
	StorageMaxUploadBytes int64  `env:"STORAGE_MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// S3 兼容存储配置
	StorageS3Region          string `env:"STORAGE_S3_REGION"`
	StorageS3Bucket          string `env:"STORAGE_S3_BUCKET"`
	StorageS3Prefix          string `env:"STORAGE_S3_PREFIX"`
	StorageS3Endpoint        string `env:"STORAGE_S3_ENDPOINT"`
	StorageS3AccessKeyID     string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	StorageS3SecretAccessKey string `env:"STORAGE_S3_SECRET_ACCESS_KEY"`
	StorageS3SessionToken    string `env:"STORAGE_S3_SESSION_TOKEN"`
	StorageS3ForcePathStyle  bool   `env:"STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// 阿里云 OSS 存储配置
	StorageOSSEndpoint        string `env:"STORAGE_OSS_ENDPOINT"`
	StorageOSSBucket          string `env:"STORAGE_OSS_BUCKET"`
	StorageOSSPrefix          string `env:"STORAGE_OSS_PREFIX"`
	StorageOSSAccessKeyID     string `env:"STORAGE_OSS_ACCESS_KEY_ID"`
	StorageOSSAccessKeySecret string `env:"STORAGE_OSS_ACCESS_KEY_SECRET"`

	// 腾讯云 COS 存储配置
	StorageCOSBucketURL string `env:"STORAGE_COS_BUCKET_URL"`
	StorageCOSPrefix    string `env:"STORAGE_COS_PREFIX"`
	StorageCOSSecretID  string `env:"STORAGE_COS_SECRET_ID"`
	StorageCOSSecretKey string `env:"STORAGE_COS_SECRET_KEY"`

	// Cloudflare R2 存储配置
	StorageR2AccountID       string `env:"STORAGE_R2_ACCOUNT_ID"`
	StorageR2Endpoint        string `env:"STORAGE_R2_ENDPOINT"`
	StorageR2Region          string `env:"STORAGE_R2_REGION" envDefault:"auto"`
	StorageR2Bucket          string `env:"STORAGE_R2_BUCKET"`
	StorageR2Prefix          string `env:"STORAGE_R2_PREFIX"`
	StorageR2AccessKeyID     string `env:"STORAGE_R2_ACCESS_KEY_ID"`
	StorageR2SecretAccessKey string `env:"STORAGE_R2_SECRET_ACCESS_KEY"`

	UnduhanListPublic      bool `env:"UNDUHAN_LIST_PUBLIC" envDefault:"false"`
	UnduhanUploadAdminOnly bool `env:"UNDUHAN_UPLOAD_ADMIN_ONLY" envDefault:"false"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	AuthRateLimitPerMinute int `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"20"`
}

// IsProduction reports whether cookies and error bodies should use production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), EnvProduction)
}

// GoogleEnabled reports whether the OAuth client is configured.
func (c Config) GoogleEnabled() bool {
	return strings.TrimSpace(c.GoogleClientID) != ""
}

// ParseConfig 读取环境变量。存在 .env 时先加载，已设置的变量不会被覆盖。
func ParseConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("failed to load .env")
	}
	var conf Config
	if err := env.Parse(&conf); err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	logrus.WithFields(logrus.Fields{
		"app_env":       conf.AppEnv,
		"db_type":       conf.DBType,
		"storage_type":  conf.StorageType,
		"session_store": conf.SessionStore,
	}).Debug("configuration loaded")
	return conf, nil
}
