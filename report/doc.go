// Package report renders clustering results as text tables or JSON.
package report
