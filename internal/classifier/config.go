package classifier

type AlgType string

const (
	AlgTypeNaiveBayes AlgType = "NAIVE_BAYES"
)

type Config struct {
	Type AlgType `envconfig:"NBAYES_CLASSIFIER_TYPE" default:"NAIVE_BAYES"`
}

func (c Config) ClassifierType() AlgType {
	return c.Type
}
