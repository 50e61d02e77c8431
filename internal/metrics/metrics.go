package metrics

import "expvar"

var (
	ViewCalls     = expvar.NewInt("view_calls")
	ViewErrors    = expvar.NewInt("view_errors")
	TxSubmitted   = expvar.NewInt("tx_submitted")
	TxCommitted   = expvar.NewInt("tx_committed")
	TxFailed      = expvar.NewInt("tx_failed")
	CatalogLoads  = expvar.NewInt("catalog_loads")
	CallerLoads   = expvar.NewInt("caller_data_loads")
	RefreshRuns   = expvar.NewInt("refresh_runs")
	SnapshotSaves = expvar.NewInt("snapshot_saves")
	SnapshotLoads = expvar.NewInt("snapshot_loads")
)
