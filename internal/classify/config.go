package classify

import "time"

type Config struct {
	RequestTimeout  time.Duration `envconfig:"NBAYES_CLASSIFY_REQUEST_TIMEOUT" default:"30s"`
	MaxBodyBytes    int64         `envconfig:"NBAYES_CLASSIFY_MAX_BODY_BYTES" default:"8388608"`
	MaxDataItemsLen int           `envconfig:"NBAYES_CLASSIFY_MAX_DATA_ITEMS_LEN" default:"1000"`
}
