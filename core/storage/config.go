package storage

// Config holds the MinIO/S3 connection used for remote catalogs and the
// object consent store.
type Config struct {
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket holds catalogs under consent.config_prefix. It also holds the
	// consent blobs unless consent.store.bucket names another one.
	Bucket string `mapstructure:"bucket" default:"consents"`
	// Region is used when the bucket has to be created.
	Region         string `mapstructure:"region" default:""`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"30"`
}
