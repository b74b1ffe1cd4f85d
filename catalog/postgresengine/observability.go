package postgresengine

import (
	"math"
	"time"
)

const (
	metricOperationDuration   = "catalogstore_operation_duration"
	metricIssueConflicts      = "catalogstore_issue_conflicts"
	metricLedgerInconsistency = "catalogstore_ledger_inconsistencies"
	labelOperation            = "operation"
	labelStatus               = "status"
	statusSuccess             = "success"
	statusError               = "error"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (cs CatalogStore) logQueryWithDuration(
	sqlQuery string,
	action string,
	duration time.Duration,
) {
	if cs.logger != nil {
		cs.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, cs.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (cs CatalogStore) logOperation(action string, args ...any) {
	if cs.logger != nil {
		cs.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs error information at the error level if the logger is configured.
func (cs CatalogStore) logError(
	message string,
	err error,
	args ...any,
) {
	if cs.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		cs.logger.Error(message, allArgs...)
	}
}

// logWarn logs non-critical issues at the warn level if the logger is configured.
func (cs CatalogStore) logWarn(message string, err error) {
	if cs.logger != nil {
		cs.logger.Warn(message, logAttrError, err.Error())
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (cs CatalogStore) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordOperationDuration records an operation duration metric if the collector is configured.
func (cs CatalogStore) recordOperationDuration(operation string, status string, duration time.Duration) {
	if cs.metricsCollector != nil {
		labels := map[string]string{
			labelOperation: operation,
			labelStatus:    status,
		}
		cs.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
	}
}

// recordIssueConflict counts a lost issue/return race if the collector is configured.
func (cs CatalogStore) recordIssueConflict(operation string) {
	if cs.metricsCollector != nil {
		labels := map[string]string{
			labelOperation: operation,
		}
		cs.metricsCollector.IncrementCounter(metricIssueConflicts, labels)
	}
}

// recordLedgerInconsistency counts a detected ledger integrity violation if the collector is configured.
func (cs CatalogStore) recordLedgerInconsistency(operation string) {
	if cs.metricsCollector != nil {
		labels := map[string]string{
			labelOperation: operation,
		}
		cs.metricsCollector.IncrementCounter(metricLedgerInconsistency, labels)
	}
}
