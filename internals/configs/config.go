package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	JWTSecret          string
	JWTRefreshSecret   string
	KioskSecret        string
	GoogleClientID     string
	PublicAppURL       string
	DefaultTimezone    string
	MidtransServerKey  string
	MidtransProduction bool

	AccessTTL  = 24 * time.Hour
	RefreshTTL = 7 * 24 * time.Hour
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			Log.Warn("⚠️ .env file not found, using system ENV")
		} else {
			Log.Info("✅ .env file loaded")
		}
	} else {
		Log.Info("🚀 Running in Railway, using system ENV")
	}

	InitLogger()

	JWTSecret = GetEnv("JWT_SECRET")
	JWTRefreshSecret = GetEnv("JWT_REFRESH_SECRET")
	KioskSecret = GetEnv("KIOSK_SECRET")
	GoogleClientID = GetEnv("GOOGLE_CLIENT_ID")
	PublicAppURL = strings.TrimRight(GetEnv("PUBLIC_APP_URL", "http://localhost:5173"), "/")
	DefaultTimezone = GetEnv("APP_TIMEZONE", "UTC")
	MidtransServerKey = GetEnv("MIDTRANS_SERVER_KEY")
	MidtransProduction = GetEnvBool("MIDTRANS_USE_PROD", false)

	if h := GetEnvInt("ACCESS_TOKEN_TTL_HOURS", 0); h > 0 {
		AccessTTL = time.Duration(h) * time.Hour
	}
	if d := GetEnvInt("REFRESH_TOKEN_TTL_DAYS", 0); d > 0 {
		RefreshTTL = time.Duration(d) * 24 * time.Hour
	}

	if JWTSecret == "" {
		Log.Error("❌ JWT_SECRET is not set!")
	}
	if JWTRefreshSecret == "" {
		Log.Error("❌ JWT_REFRESH_SECRET is not set!")
	}
	// kiosk credentials must never verify with the admin secret
	if KioskSecret == "" || KioskSecret == JWTSecret {
		Log.Error("❌ KIOSK_SECRET must be set and differ from JWT_SECRET")
	}
	if GoogleClientID == "" {
		Log.Warn("GOOGLE_CLIENT_ID is not set, Google login disabled")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func GetEnvInt(key string, def int) int {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func GetEnvBool(key string, def bool) bool {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
