package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type S3 struct {
	Bucket   string
	Prefix   string
	Endpoint string
}

type ACRCloud struct {
	Host      string
	AccessKey string
	Secret    string
	Timeout   time.Duration
}

type LemonFox struct {
	URL      string
	APIKey   string
	Language string
	Timeout  time.Duration
}

type Serper struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type Artwork struct {
	Domains []string
	Timeout time.Duration
}

type Audio struct {
	FFmpegPath string
	Timeout    time.Duration
}

type Game struct {
	IntroPause       time.Duration
	KeywordPreview   time.Duration
	RecordWindow     time.Duration
	RecordGrace      time.Duration
	ListenWindow     time.Duration
	RecognitionGrace time.Duration
	ResultPause      time.Duration

	DefaultRounds int
	MaxRounds     int
	Jitter        int
}

type Config struct {
	HTTP     HTTPServer
	Redis    RedisCache
	Postgres Postgres
	S3       S3
	ACRCloud ACRCloud
	LemonFox LemonFox
	Serper   Serper
	Artwork  Artwork
	Audio    Audio
	Game     Game
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTP:     *newHTTP(),
		Redis:    *newRedis(),
		Postgres: *newPostgres(),
		S3:       *newS3(),
		ACRCloud: *newACRCloud(),
		LemonFox: *newLemonFox(),
		Serper:   *newSerper(),
		Artwork:  *newArtwork(),
		Audio:    *newAudio(),
		Game:     *newGame(),
	}

	log.Printf("%s backend config loaded", logtag)
	return cfg
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

// Empty REDIS_HOST disables the search cache.
func newRedis() *RedisCache {
	return &RedisCache{
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", ""),
		Password: getenvSecret("REDIS_PASSWORD", ""),
		TTL:      getenvDuration("REDIS_SEARCH_TTL", time.Hour),
	}
}

// Empty DB_HOST switches the keyword pool to the built-in list.
func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", ""),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getenvSecret("DB_PASSWORD", "shared"),
		DBName:   getenv("DB_NAME", "singalong"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

// Empty S3_BUCKET disables recording archival. S3_ENDPOINT points the client at a local mock server.
func newS3() *S3 {
	return &S3{
		Bucket:   getenv("S3_BUCKET", ""),
		Prefix:   getenv("S3_PREFIX", "recording"),
		Endpoint: getenv("S3_ENDPOINT", ""),
	}
}

func newACRCloud() *ACRCloud {
	return &ACRCloud{
		Host:      getenv("ACR_HOST", "identify-ap-southeast-1.acrcloud.com"),
		AccessKey: getenvSecret("ACR_KEY", ""),
		Secret:    getenvSecret("ACR_SEC", ""),
		Timeout:   getenvDuration("ACR_TIMEOUT", 10*time.Second),
	}
}

func newLemonFox() *LemonFox {
	return &LemonFox{
		URL:      getenv("LF_URL", "https://api.lemonfox.ai/v1/audio/transcriptions"),
		APIKey:   getenvSecret("LF_API_KEY", ""),
		Language: getenv("LF_LANGUAGE", "korean"),
		Timeout:  getenvDuration("LF_TIMEOUT", 15*time.Second),
	}
}

func newSerper() *Serper {
	return &Serper{
		URL:     getenv("SERPER_URL", "https://google.serper.dev/search"),
		APIKey:  getenvSecret("SERPER_API_KEY", ""),
		Timeout: getenvDuration("SERPER_TIMEOUT", 8*time.Second),
	}
}

func newArtwork() *Artwork {
	return &Artwork{
		Domains: getenvList("ARTWORK_DOMAINS", []string{"music.bugs.co.kr", "www.genie.co.kr", "www.vibe.naver.com"}),
		Timeout: getenvDuration("ARTWORK_TIMEOUT", 6*time.Second),
	}
}

func newAudio() *Audio {
	return &Audio{
		FFmpegPath: getenv("FFMPEG_PATH", "ffmpeg"),
		Timeout:    getenvDuration("FFMPEG_TIMEOUT", 10*time.Second),
	}
}

func newGame() *Game {
	return &Game{
		IntroPause:       getenvDuration("GAME_INTRO_PAUSE", 5*time.Second),
		KeywordPreview:   getenvDuration("GAME_KEYWORD_PREVIEW", 9*time.Second),
		RecordWindow:     getenvDuration("GAME_RECORD_WINDOW", 10*time.Second),
		RecordGrace:      getenvDuration("GAME_RECORD_GRACE", 2*time.Second),
		ListenWindow:     getenvDuration("GAME_LISTEN_WINDOW", 10*time.Second),
		RecognitionGrace: getenvDuration("GAME_RECOGNITION_GRACE", 500*time.Millisecond),
		ResultPause:      getenvDuration("GAME_RESULT_PAUSE", 6*time.Second),
		DefaultRounds:    getenvInt("GAME_DEFAULT_ROUNDS", 3),
		MaxRounds:        getenvInt("GAME_MAX_ROUNDS", 10),
		Jitter:           getenvInt("GAME_SCORE_JITTER", 5),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	fmt.Printf("%s %s = %s\n", logtag, key, val)
	return val
}

func getenvSecret(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined\n", logtag, key)
		return defaultValue
	}
	fmt.Printf("%s %s = ***\n", logtag, key)
	return val
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getenv(key, defaultValue.String())
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("%s %s is not a duration (%v). Using default value %s", logtag, key, err, defaultValue)
		return defaultValue
	}
	return d
}

func getenvInt(key string, defaultValue int) int {
	raw := getenv(key, strconv.Itoa(defaultValue))
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("%s %s is not an integer (%v). Using default value %d", logtag, key, err, defaultValue)
		return defaultValue
	}
	return n
}

func getenvList(key string, defaultValue []string) []string {
	raw := getenv(key, strings.Join(defaultValue, ","))
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
