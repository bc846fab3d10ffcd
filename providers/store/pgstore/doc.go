// Package pgstore keeps an audit trail of failed extractions in PostgreSQL.
//
// [Store] implements structured.Recorder. Each row holds the task, the
// expected shape, the failure reason, the missing keys, the bounded snippet
// and the attempt number, so prompt regressions show up as a shift in reason
// counts per task. It works with any pgx executor: pass a *pgxpool.Pool in
// production or a pgx.Tx to scope writes to a transaction.
package pgstore
