package train

import (
	"time"
)

type Config struct {
	RequestTimeout time.Duration `envconfig:"NBAYES_TRAIN_REQUEST_TIMEOUT" default:"5m"`
	MaxBodyBytes   int64         `envconfig:"NBAYES_TRAIN_MAX_BODY_BYTES" default:"67108864"`
	MaxDataItems   int           `envconfig:"NBAYES_TRAIN_MAX_DATA_ITEMS" default:"1000000"`
}
