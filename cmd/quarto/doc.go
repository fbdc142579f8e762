// Command quarto searches external data sources for catalog metadata and
// maintains a local collection database.
package main
