// Package helper provides shared test utilities: a slog.Handler spy with
// fluent log-record matchers and a recorder for command lifecycle hooks.
package helper
