// Package library loads page images chosen by the user into the inline form
// the front end renders: a data URL of the original bytes plus a smaller JPEG
// thumbnail.
package library
