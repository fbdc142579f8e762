// Package igdb searches the Internet Game Database for game collections.
// Search issues a keyword query and returns partial records; ResolveFull
// turns raw company ids into display names and registers the cover image.
package igdb
