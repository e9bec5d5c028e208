package config

// Storage providers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Event stream providers.
const (
	EventsNone  = "none"
	EventsKafka = "kafka"
)

const (
	defaultStorageProvider = StorageSQLite
	defaultSQLitePath      = "bridge.sqlite"
	defaultListen          = ":3978"

	defaultAssistantURL     = "https://gateway.watsonplatform.net/assistant/api"
	defaultAssistantVersion = "2021-11-27"
	defaultIAMURL           = "https://iam.cloud.ibm.com"

	defaultEventsProvider = EventsNone
	defaultEventsTopic    = "bridge.events"

	defaultNotifyConcurrency = 8
	defaultNotifyMessage     = "Notification hello"

	defaultClientAPITarget = "http://localhost:3978"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider:   defaultStorageProvider,
			SQLitePath: defaultSQLitePath,
		},
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Assistant: AssistantConfig{
			URL:     defaultAssistantURL,
			Version: defaultAssistantVersion,
			IAMURL:  defaultIAMURL,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		Notify: NotifyConfig{
			Concurrency: defaultNotifyConcurrency,
			Message:     defaultNotifyMessage,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
	}
}
