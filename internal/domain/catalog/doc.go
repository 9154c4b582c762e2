// Package catalog holds the list of installable sub-applications.
//
// The shell treats the catalog as read-only: it is replaced wholesale
// whenever a new list arrives and never edited in place.
//
// Components:
//   - Store: current list, lookups by id and by id suffix, change listeners
//   - Fetcher: GET of the catalog JSON array from the catalog service
//   - Subscriber: push channel delivering {"kind":"apps_update","data":[...]}
//   - Seeder: loads catalog files (.json, .yaml, .toml) from a directory
//
// Inline widget markup is sanitized on ingest, so nothing downstream ever
// sees unsanitized HTML.
//
// Example Usage:
//
//	store := catalog.NewStore(logger)
//	apps, err := catalog.NewFetcher(url).Fetch(ctx)
//	store.Replace(apps, catalog.SourceFetch)
//	go catalog.NewSubscriber(pushURL, store, logger).Run(ctx)
package catalog
