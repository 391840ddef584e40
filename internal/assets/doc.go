// Package assets serves the embedded chat page.
//
// The page is plain HTML/JS consuming the gateway's own endpoints; there is
// no build step. Assets are unversioned, so everything is served no-cache.
package assets
