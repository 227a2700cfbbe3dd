package catalog

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"NBAYES_CATALOG_REQUEST_TIMEOUT" default:"10s"`
}
