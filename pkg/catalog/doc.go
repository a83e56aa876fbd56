// Package catalog serves the public product and category listings with a
// small in-memory cache in front of the API client.
package catalog
