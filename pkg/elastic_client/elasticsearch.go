package elastic_client

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/parigo/parigo/pkg/util"
	"github.com/rs/zerolog/log"
)

var Client *elasticsearch.Client

func Connect(required bool) error {
	env := util.GetEnvironmentVariables()

	if env["PARIGO_ELASTICSEARCH_ADDRESS"] == "" && !required {
		log.Info().Msg("Skipping Elasticsearch setup")
		return nil
	} else if env["PARIGO_ELASTICSEARCH_ADDRESS"] == "" && required {
		log.Fatal().Msg("Elasticsearch configuration not set")
	}

	// Self-signed certificates on the ES endpoint
	tp := http.DefaultTransport.(*http.Transport).Clone()
	if tp.TLSClientConfig != nil {
		tp.TLSClientConfig.InsecureSkipVerify = true
	}

	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{env["PARIGO_ELASTICSEARCH_ADDRESS"]},
		Username:  env["PARIGO_ELASTICSEARCH_USERNAME"],
		Password:  env["PARIGO_ELASTICSEARCH_PASSWORD"],
		Transport: tp,

		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
	if err != nil {
		return err
	}

	_, err = es.Info()
	if err != nil {
		return err
	}

	Client = es

	log.Info().Msgf("Elasticsearch client setup for %s", env["PARIGO_ELASTICSEARCH_ADDRESS"])

	return nil
}
