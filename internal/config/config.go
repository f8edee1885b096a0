package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type ServerConfig struct {
	Port             int           `mapstructure:"port"`
	GracefulShutdown time.Duration `mapstructure:"graceful-shutdown"`
	ReadTimeout      time.Duration `mapstructure:"read-timeout"`
	WriteTimeout     time.Duration `mapstructure:"write-timeout"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type DBConfig struct {
	DataSource  string `mapstructure:"data-source"`
	PrepareStmt bool   `mapstructure:"prepare-stmt"`
	LogLevel    string `mapstructure:"log-level"`
	Pool        struct {
		Enable             bool          `mapstructure:"enable"`
		MaxOpenConnections int           `mapstructure:"max-open-connections"`
		MaxIdleConnections int           `mapstructure:"max-idle-connections"`
		MaxLifetime        time.Duration `mapstructure:"max-lifetime"`
	} `mapstructure:"pool"`
}

type CacheConfig struct {
	MaxSize   int    `mapstructure:"max-size"`
	RedisAddr string `mapstructure:"redis-addr"`
	RedisPass string `mapstructure:"redis-pass"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access-key"`
	SecretKey string `mapstructure:"secret-key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use-ssl"`
}

// DriveConfig carries the validation limits consulted by the folder tree
// store and the file registry.
type DriveConfig struct {
	MaxDepth          int           `mapstructure:"max-depth"`
	MaxFileSize       int64         `mapstructure:"max-file-size"`
	MaxFilesPerUpload int           `mapstructure:"max-files-per-upload"`
	MaxFilesPerFolder int           `mapstructure:"max-files-per-folder"`
	AllowedExtensions []string      `mapstructure:"allowed-extensions"`
	AllowedMimeTypes  []string      `mapstructure:"allowed-mime-types"`
	CleanupEnable     bool          `mapstructure:"cleanup-enable"`
	CleanupInterval   time.Duration `mapstructure:"cleanup-interval"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LoggingConfig `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Storage StorageConfig `mapstructure:"storage"`
	Drive   DriveConfig   `mapstructure:"drive"`
}

type ConfigLoader struct {
	v *viper.Viper
}

func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{
		v: viper.New(),
	}
}

func StringToDurationHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		str, ok := data.(string)
		if !ok {
			return data, nil
		}
		return time.ParseDuration(str)
	}
}

func (cl *ConfigLoader) InitializeConfig(cmd *cobra.Command) error {
	cl.v.SetConfigType("toml")

	cfgFile := cmd.Flags().Lookup("config").Value.String()

	if cfgFile != "" {
		cl.v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error getting home directory: %v", err)
		}
		cl.v.AddConfigPath(filepath.Join(home, ".facilidrive"))
		cl.v.AddConfigPath(".")
		cl.v.SetConfigName("config")
	}

	cl.v.SetEnvPrefix("facilidrive")
	cl.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	cl.v.AutomaticEnv()

	if err := cl.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	if err := cl.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %v", err)
		}
	}

	return nil
}

func (cl *ConfigLoader) Load(cfg interface{}) error {
	config := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			StringToDurationHook(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           cfg,
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %v", err)
	}

	if err := decoder.Decode(cl.v.AllSettings()); err != nil {
		return fmt.Errorf("failed to decode config: %v", err)
	}

	return nil
}

func AddCommonFlags(flags *pflag.FlagSet, config *Config) {

	flags.StringP("config", "c", "", "Config file path (default $HOME/.facilidrive/config.toml)")

	// Log config
	flags.StringVar(&config.Log.Level, "log-level", zapcore.InfoLevel.String(), "Logging level")
	flags.StringVar(&config.Log.File, "log-file", "", "Logging file path")

	// DB config
	flags.StringVar(&config.DB.DataSource, "db-data-source", "", "Database connection string")
	flags.StringVar(&config.DB.LogLevel, "db-log-level", zapcore.InfoLevel.String(), "Database log level")
	flags.BoolVar(&config.DB.PrepareStmt, "db-prepare-stmt", true, "Enable prepared statements")
	flags.BoolVar(&config.DB.Pool.Enable, "db-pool-enable", true, "Enable database pool")
	flags.IntVar(&config.DB.Pool.MaxOpenConnections, "db-pool-max-open-connections", 25, "Database max open connections")
	flags.IntVar(&config.DB.Pool.MaxIdleConnections, "db-pool-max-idle-connections", 25, "Database max idle connections")
	flags.DurationVar(&config.DB.Pool.MaxLifetime, "db-pool-max-lifetime", 10*time.Minute, "Database max connection lifetime")

	// Cache config
	flags.IntVar(&config.Cache.MaxSize, "cache-max-size", 10*1024*1024, "Max cache size in bytes")
	flags.StringVar(&config.Cache.RedisAddr, "cache-redis-addr", "", "Redis address")
	flags.StringVar(&config.Cache.RedisPass, "cache-redis-pass", "", "Redis password")

	// Storage config
	flags.StringVar(&config.Storage.Endpoint, "storage-endpoint", "", "Object storage endpoint")
	flags.StringVar(&config.Storage.AccessKey, "storage-access-key", "", "Object storage access key")
	flags.StringVar(&config.Storage.SecretKey, "storage-secret-key", "", "Object storage secret key")
	flags.StringVar(&config.Storage.Bucket, "storage-bucket", "facilidrive", "Object storage bucket")
	flags.StringVar(&config.Storage.Region, "storage-region", "", "Object storage region")
	flags.BoolVar(&config.Storage.UseSSL, "storage-use-ssl", true, "Use TLS for object storage")

	// Drive limits
	flags.IntVar(&config.Drive.MaxDepth, "drive-max-depth", 10, "Max folder depth")
	flags.Int64Var(&config.Drive.MaxFileSize, "drive-max-file-size", 100*1024*1024, "Max file size in bytes")
	flags.IntVar(&config.Drive.MaxFilesPerUpload, "drive-max-files-per-upload", 20, "Max files per upload request")
	flags.IntVar(&config.Drive.MaxFilesPerFolder, "drive-max-files-per-folder", 1000, "Max files per folder")
	flags.StringSliceVar(&config.Drive.AllowedExtensions, "drive-allowed-extensions",
		[]string{"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "csv", "txt", "jpg", "jpeg", "png", "gif", "dwg", "dxf", "zip"},
		"Allowed file extensions")
	flags.StringSliceVar(&config.Drive.AllowedMimeTypes, "drive-allowed-mime-types",
		[]string{"application/*", "image/*", "text/*"},
		"Allowed MIME types")
	flags.BoolVar(&config.Drive.CleanupEnable, "drive-cleanup-enable", true, "Enable storage cleanup sweep")
	flags.DurationVar(&config.Drive.CleanupInterval, "drive-cleanup-interval", time.Hour, "Storage cleanup sweep interval")
}
