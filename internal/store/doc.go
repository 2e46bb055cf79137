// Package store caches SPARQL execution outcomes in SQLite so that
// re-running a batch skips queries that were already executed.
//
// The cache is keyed by the SHA-256 of the exact query string, so any
// repair-pipeline change that alters a query naturally misses the cache
// and re-executes. Both successes and failures are cached: a failing
// query is just as expensive to re-discover as a succeeding one.
package store
