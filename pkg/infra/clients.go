package infra

import (
	"net/http"

	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
)

type Clients struct {
	httpClient HTTPClient
	scanner    interfaces.Scanner
	trust      interfaces.TrustClient
	storage    interfaces.ObjectStorage
	registry   interfaces.Registry
	cosign     interfaces.Cosign
	fetcher    interfaces.ManifestFetcher
	analytics  interfaces.Analytics
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Option func(*Clients)

func New(options ...Option) *Clients {
	client := &Clients{
		httpClient: http.DefaultClient,
	}

	for _, opt := range options {
		opt(client)
	}

	return client
}

func (x *Clients) HTTPClient() HTTPClient {
	return x.httpClient
}
func (x *Clients) Scanner() interfaces.Scanner {
	return x.scanner
}
func (x *Clients) Trust() interfaces.TrustClient {
	return x.trust
}
func (x *Clients) Storage() interfaces.ObjectStorage {
	return x.storage
}
func (x *Clients) Registry() interfaces.Registry {
	return x.registry
}
func (x *Clients) Cosign() interfaces.Cosign {
	return x.cosign
}
func (x *Clients) Fetcher() interfaces.ManifestFetcher {
	return x.fetcher
}
func (x *Clients) Analytics() interfaces.Analytics {
	return x.analytics
}

func WithHTTPClient(client HTTPClient) Option {
	return func(x *Clients) {
		x.httpClient = client
	}
}

func WithScanner(scanner interfaces.Scanner) Option {
	return func(x *Clients) {
		x.scanner = scanner
	}
}

func WithTrust(client interfaces.TrustClient) Option {
	return func(x *Clients) {
		x.trust = client
	}
}

func WithStorage(storage interfaces.ObjectStorage) Option {
	return func(x *Clients) {
		x.storage = storage
	}
}

func WithRegistry(registry interfaces.Registry) Option {
	return func(x *Clients) {
		x.registry = registry
	}
}

func WithCosign(client interfaces.Cosign) Option {
	return func(x *Clients) {
		x.cosign = client
	}
}

func WithFetcher(fetcher interfaces.ManifestFetcher) Option {
	return func(x *Clients) {
		x.fetcher = fetcher
	}
}

func WithAnalytics(client interfaces.Analytics) Option {
	return func(x *Clients) {
		x.analytics = client
	}
}
