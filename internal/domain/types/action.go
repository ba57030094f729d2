package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionExternalServiceFailed     = "external_service_failed"

	ActionRefresh           = "refresh"
	ActionDatasetDownloaded = "dataset_downloaded"
	ActionDatasetLoaded     = "dataset_loaded"
	ActionMetricsSaved      = "metrics_saved"
	ActionAggregate         = "aggregate"
	ActionMetricsFileSkip   = "metrics_file_skipped"
	ActionScheduledRefresh  = "scheduled_refresh"
	ActionWatcherEvent      = "watcher_event"
	ActionDashboardPushed   = "dashboard_pushed"
)
