// Package suite holds the browser test modules run against the Trackora
// application. Run it with go test; flags go after -args:
//
//	go test ./suite -args -config testdata/config.yaml -modules 'admin_*' -auto-open-report
//
// With no base_url configured (and no TRACKORA_BASE_URL), the suite serves
// the stand-in application from internal/trackoratest.
package suite
