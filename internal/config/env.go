package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
}

type DBEnv struct {
	// Path of the sqlite database file. ":memory:" keeps the store
	// in-process, which the test harnesses use.
	Path string `envconfig:"DB_PATH" default:".opsboard/opsboard.db"`
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"mailto:ops@opsboard.dev"`
}

type ArchiveEnv struct {
	Type    string `envconfig:"ARCHIVE_TYPE" default:"local"`
	BaseDir string `envconfig:"ARCHIVE_BASE_DIR" default:".opsboard/archive"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"ARCHIVE_S3_BUCKET"`
	S3Prefix string `envconfig:"ARCHIVE_S3_PREFIX" default:"opsboard/audit/"`
	S3Region string `envconfig:"ARCHIVE_S3_REGION" default:"ap-northeast-1"`
}

type Env struct {
	BaseEnv
	DBEnv
	VAPIDEnv
	ArchiveEnv
}

const namespace = "OPSBOARD"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func VAPIDEnvFromEnv(env *Env) *VAPIDEnv {
	return &env.VAPIDEnv
}

func ArchiveEnvFromEnv(env *Env) *ArchiveEnv {
	return &env.ArchiveEnv
}
